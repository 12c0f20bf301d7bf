package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/footdash/internal/filter"
)

func TestRouter_Resolve(t *testing.T) {
	r := DefaultRouter()
	tests := []struct {
		id     ID
		path   string
		kind   Kind
		params filter.Query
	}{
		{Yearly, PathYearly, KindTrend, filter.Query{}},
		{GoalsTrend, PathYearly, KindGoals, filter.Query{}},
		{Opponents, PathOpponents, KindRanking, filter.Query{"top": "15"}},
		{RaceYearlyWins, PathTopByYear, KindRace, filter.Query{"metric": "wins", "top": "10"}},
		{RaceYearlyGoals, PathTopByYear, KindRace, filter.Query{"metric": "gf", "top": "10"}},
		{RaceCumWins, PathTopCumulative, KindRace, filter.Query{"metric": "wins", "top": "10"}},
		{RaceCumGoals, PathTopCumulative, KindRace, filter.Query{"metric": "gf", "top": "10"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			d, err := r.Resolve(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.path, d.Path)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.params, d.Overrides())
		})
	}
}

func TestRouter_ResolveUnknown(t *testing.T) {
	_, err := DefaultRouter().Resolve("pie_of_everything")
	var unknown *UnknownViewError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, ID("pie_of_everything"), unknown.ID)
}

func TestRouter_IDsKeepTableOrder(t *testing.T) {
	r := NewRouter(
		Descriptor{ID: "b"},
		Descriptor{ID: "a"},
		Descriptor{ID: "b", Title: "replaced"},
	)
	assert.Equal(t, []ID{"b", "a"}, r.IDs())
	d, err := r.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "replaced", d.Title)
}
