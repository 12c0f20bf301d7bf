package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		overrides Query
		want      Query
	}{
		{
			name:  "team defaults when blank",
			state: State{Team: "   "},
			want:  Query{"team": "England"},
		},
		{
			name:  "tournament only when non-blank",
			state: State{Team: "Brazil", Tournament: " "},
			want:  Query{"team": "Brazil"},
		},
		{
			name:  "tournament trimmed",
			state: State{Team: "Brazil", Tournament: " FIFA World Cup "},
			want:  Query{"team": "Brazil", "tournament": "FIFA World Cup"},
		},
		{
			name:  "reversed years are normalized",
			state: State{Team: "England", YearFrom: "2017", YearTo: "1872"},
			want: Query{
				"team":      "England",
				"date_from": "1872-01-01",
				"date_to":   "2017-12-31",
			},
		},
		{
			name:  "half range is omitted",
			state: State{Team: "England", YearFrom: "1990"},
			want:  Query{"team": "England"},
		},
		{
			name:  "unparsable year drops the whole range",
			state: State{Team: "England", YearFrom: "1990", YearTo: "soon"},
			want:  Query{"team": "England"},
		},
		{
			name:      "overrides win",
			state:     State{Team: "England", Tournament: "Friendly"},
			overrides: Query{"team": "Scotland", "top": "15"},
			want:      Query{"team": "Scotland", "tournament": "Friendly", "top": "15"},
		},
		{
			name:      "blank overrides are dropped, not serialized",
			state:     State{Team: "England"},
			overrides: Query{"metric": "", "top": "10"},
			want:      Query{"team": "England", "top": "10"},
		},
		{
			name:      "blank override removes a filter value",
			state:     State{Team: "England", Tournament: "Friendly"},
			overrides: Query{"tournament": ""},
			want:      Query{"team": "England"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.state, tt.overrides))
		})
	}
}

func TestCompose_NoBlankValues(t *testing.T) {
	states := []State{
		{},
		{Team: "A", Tournament: "", YearFrom: "", YearTo: ""},
		{Team: "A", Tournament: "\t", YearFrom: "x", YearTo: "2000"},
	}
	for _, s := range states {
		for k, v := range Compose(s, Query{"metric": " ", "top": ""}) {
			assert.NotEmptyf(t, v, "key %s has blank value", k)
		}
	}
}

func TestState_BlankTeamUsesConfiguredDefault(t *testing.T) {
	s := NewState(" Brazil ")
	assert.Equal(t, "Brazil", s.Team)

	s.Team = "   "
	s.Normalize()
	assert.Equal(t, "Brazil", s.TeamOrDefault())
	assert.Equal(t, "Brazil", Compose(*s, nil)[KeyTeam])
	assert.Equal(t, "Brazil", s.Label())

	assert.Equal(t, DefaultTeam, NewState("").DefaultTeam())
	assert.Equal(t, DefaultTeam, State{}.TeamOrDefault())
}

func TestState_Normalize(t *testing.T) {
	s := State{Team: " Spain ", YearFrom: "2010", YearTo: " 1990"}
	s.Normalize()
	assert.Equal(t, State{Team: "Spain", YearFrom: "1990", YearTo: "2010"}, s)

	s = State{YearFrom: "abc", YearTo: "1990"}
	s.Normalize()
	assert.Equal(t, "abc", s.YearFrom)
	assert.Equal(t, "1990", s.YearTo)
}

func TestState_Label(t *testing.T) {
	s := State{Team: "Narnia", Tournament: "Friendly", YearFrom: "2001", YearTo: "1999"}
	assert.Equal(t, "Narnia, Friendly, 1999-2001", s.Label())
	assert.Equal(t, "England", State{}.Label())
}

func TestQuery_Encode(t *testing.T) {
	assert.Equal(t, "", Query{}.Encode())
	assert.Equal(t, "", Query(nil).Encode())
	assert.Equal(t,
		"date_from=1872-01-01&team=United+States",
		Query{"team": "United States", "date_from": "1872-01-01"}.Encode())
}
