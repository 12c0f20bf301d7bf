package views

import (
	"fmt"
	"strconv"

	"github.com/keilerkonzept/footdash/internal/filter"
)

type ID string

const (
	Yearly          ID = "yearly"
	GoalsTrend      ID = "goals_trend"
	Opponents       ID = "opponents"
	RaceYearlyWins  ID = "race_yearly_wins"
	RaceYearlyGoals ID = "race_yearly_goals"
	RaceCumWins     ID = "race_cum_wins"
	RaceCumGoals    ID = "race_cum_goals"
)

// Kind selects the renderer family for a view.
type Kind string

const (
	KindTrend   Kind = "trend"
	KindGoals   Kind = "goals"
	KindRanking Kind = "ranking"
	KindRace    Kind = "race"
)

const (
	PathYearly        = "/stats/yearly"
	PathOpponents     = "/stats/opponents"
	PathTopByYear     = "/stats/top_by_year"
	PathTopCumulative = "/stats/top_cumulative"
	PathTournaments   = "/meta/tournaments"
	PathHealth        = "/health"
)

type Descriptor struct {
	ID         ID
	Kind       Kind
	Title      string
	Path       string
	Metric     string
	TopN       int
	Cumulative bool
}

// Overrides returns the view specific query parameters.
func (d Descriptor) Overrides() filter.Query {
	q := filter.Query{}
	if d.Metric != "" {
		q[filter.KeyMetric] = d.Metric
	}
	if d.TopN > 0 {
		q[filter.KeyTop] = strconv.Itoa(d.TopN)
	}
	return q
}

func (d Descriptor) IsRace() bool { return d.Kind == KindRace }

type UnknownViewError struct {
	ID ID
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("unknown view %q", string(e.ID))
}

// Router resolves view identifiers against a fixed table.
type Router struct {
	order []ID
	table map[ID]Descriptor
}

func NewRouter(descriptors ...Descriptor) *Router {
	r := &Router{table: make(map[ID]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.table[d.ID]; !dup {
			r.order = append(r.order, d.ID)
		}
		r.table[d.ID] = d
	}
	return r
}

// DefaultRouter holds the dashboard's views.
func DefaultRouter() *Router {
	return NewRouter(
		Descriptor{ID: Yearly, Kind: KindTrend, Title: "yearly stats", Path: PathYearly},
		Descriptor{ID: GoalsTrend, Kind: KindGoals, Title: "goals trend", Path: PathYearly},
		Descriptor{ID: Opponents, Kind: KindRanking, Title: "opponents", Path: PathOpponents, TopN: 15},
		Descriptor{
			ID: RaceYearlyWins, Kind: KindRace, Title: "bar race",
			Path: PathTopByYear, Metric: "wins", TopN: 10,
		},
		Descriptor{
			ID: RaceYearlyGoals, Kind: KindRace, Title: "bar race",
			Path: PathTopByYear, Metric: "gf", TopN: 10,
		},
		Descriptor{
			ID: RaceCumWins, Kind: KindRace, Title: "bar race",
			Path: PathTopCumulative, Metric: "wins", TopN: 10, Cumulative: true,
		},
		Descriptor{
			ID: RaceCumGoals, Kind: KindRace, Title: "bar race",
			Path: PathTopCumulative, Metric: "gf", TopN: 10, Cumulative: true,
		},
	)
}

func (r *Router) Resolve(id ID) (Descriptor, error) {
	d, ok := r.table[id]
	if !ok {
		return Descriptor{}, &UnknownViewError{ID: id}
	}
	return d, nil
}

// IDs lists the views in table order.
func (r *Router) IDs() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}
