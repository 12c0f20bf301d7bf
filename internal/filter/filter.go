package filter

import (
	"fmt"
	"strconv"
	"strings"
)

const DefaultTeam = "England"

const (
	KeyTeam       = "team"
	KeyTournament = "tournament"
	KeyDateFrom   = "date_from"
	KeyDateTo     = "date_to"
	KeyMetric     = "metric"
	KeyTop        = "top"
)

// State holds the current filter selections. Year fields keep the raw
// user input; they are interpreted by Compose.
type State struct {
	Team       string
	Tournament string
	YearFrom   string
	YearTo     string

	// fallback replaces a blank Team; DefaultTeam when unset.
	fallback string
}

// NewState starts with defaultTeam selected and keeps it as the team used
// whenever Team is blank later on.
func NewState(defaultTeam string) *State {
	defaultTeam = strings.TrimSpace(defaultTeam)
	if defaultTeam == "" {
		defaultTeam = DefaultTeam
	}
	return &State{Team: defaultTeam, fallback: defaultTeam}
}

// DefaultTeam returns the team used when Team is blank.
func (s State) DefaultTeam() string {
	if s.fallback != "" {
		return s.fallback
	}
	return DefaultTeam
}

// TeamOrDefault returns the trimmed team, falling back to the default team.
func (s State) TeamOrDefault() string {
	if t := strings.TrimSpace(s.Team); t != "" {
		return t
	}
	return s.DefaultTeam()
}

// YearRange returns the normalized range. ok is false unless both
// years parse.
func (s State) YearRange() (from, to int, ok bool) {
	yf, errFrom := strconv.Atoi(strings.TrimSpace(s.YearFrom))
	yt, errTo := strconv.Atoi(strings.TrimSpace(s.YearTo))
	if errFrom != nil || errTo != nil {
		return 0, 0, false
	}
	return min(yf, yt), max(yf, yt), true
}

// Normalize trims all fields and swaps a reversed year range.
func (s *State) Normalize() {
	s.Team = strings.TrimSpace(s.Team)
	s.Tournament = strings.TrimSpace(s.Tournament)
	s.YearFrom = strings.TrimSpace(s.YearFrom)
	s.YearTo = strings.TrimSpace(s.YearTo)
	if from, to, ok := s.YearRange(); ok {
		s.YearFrom, s.YearTo = strconv.Itoa(from), strconv.Itoa(to)
	}
}

// Label describes the selection for titles like `No data for "England"`.
func (s State) Label() string {
	label := s.TeamOrDefault()
	if t := strings.TrimSpace(s.Tournament); t != "" {
		label += ", " + t
	}
	if from, to, ok := s.YearRange(); ok {
		label += fmt.Sprintf(", %d-%d", from, to)
	}
	return label
}

// Compose builds the query for a request. Overrides win over the
// filter-derived keys of the same name.
func Compose(s State, overrides Query) Query {
	q := Query{KeyTeam: s.TeamOrDefault()}
	if t := strings.TrimSpace(s.Tournament); t != "" {
		q[KeyTournament] = t
	}
	if from, to, ok := s.YearRange(); ok {
		q[KeyDateFrom] = fmt.Sprintf("%d-01-01", from)
		q[KeyDateTo] = fmt.Sprintf("%d-12-31", to)
	}
	return q.Merge(overrides)
}
