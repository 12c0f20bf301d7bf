package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/chart"
	"github.com/keilerkonzept/footdash/internal/race"
	"github.com/keilerkonzept/footdash/internal/rank"
	"github.com/keilerkonzept/footdash/internal/views"
)

// Empty describes a valid result without rows.
func Empty(label string) chart.Description {
	return chart.Description{Title: `No data for "` + label + `"`}
}

// Failed describes a load that did not produce a result.
func Failed(what string) chart.Description {
	return chart.Description{Title: "Failed to load " + what, Error: true}
}

// Loading is painted while the first request of a view is in flight.
func Loading(what string) chart.Description {
	return chart.Description{Title: "Loading " + what + " ..."}
}

func yearLabels(rows []api.YearlyStat) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = strconv.Itoa(r.Year)
	}
	return out
}

func column(rows []api.YearlyStat, f func(api.YearlyStat) int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(f(r))
	}
	return out
}

// Trend shows wins, draws and losses per year as stacked areas.
func Trend(team string, rows []api.YearlyStat) chart.Description {
	if len(rows) == 0 {
		return Empty(team)
	}
	stacked := func(name string, f func(api.YearlyStat) int) chart.Series {
		return chart.Series{Name: name, Type: chart.Line, Stack: "total", Area: true, Data: column(rows, f)}
	}
	return chart.Description{
		Title:        team + " — Wins / Draws / Losses per Year",
		Categories:   yearLabels(rows),
		CategoryName: "year",
		Legend:       true,
		Zoom:         true,
		Series: []chart.Series{
			stacked("Wins", func(r api.YearlyStat) int { return r.Wins }),
			stacked("Draws", func(r api.YearlyStat) int { return r.Draws }),
			stacked("Losses", func(r api.YearlyStat) int { return r.Losses }),
		},
	}
}

// GoalsTrend compares goals scored and conceded per year.
func GoalsTrend(team string, rows []api.YearlyStat) chart.Description {
	if len(rows) == 0 {
		return Empty(team)
	}
	return chart.Description{
		Title:        team + " — Goals For vs Against per Year",
		Categories:   yearLabels(rows),
		CategoryName: "year",
		ValueName:    "Goals",
		Legend:       true,
		Zoom:         true,
		Series: []chart.Series{
			{Name: "Goals For", Type: chart.Line, Area: true, Data: column(rows, func(r api.YearlyStat) int { return r.GF })},
			{Name: "Goals Against", Type: chart.Line, Area: true, Data: column(rows, func(r api.YearlyStat) int { return r.GA })},
		},
	}
}

// Opponents ranks opponents by matches played. Ties keep server order.
func Opponents(team string, rows []api.OpponentStat) chart.Description {
	if len(rows) == 0 {
		return Empty(team)
	}
	ranked := rank.Descending(rows, func(r api.OpponentStat) float64 { return float64(r.Played) })
	names := make([]string, len(ranked))
	played := make([]float64, len(ranked))
	labels := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Opponent
		played[i] = float64(r.Played)
		labels[i] = fmt.Sprintf("%d  (W%d/D%d/L%d, %d%%)",
			r.Played, r.Wins, r.Draws, r.Losses, int(math.Round(r.WinRate*100)))
	}
	return chart.Description{
		Title:      team + " — Top Opponents by Matches",
		Categories: names,
		Horizontal: true,
		Inverse:    true,
		ValueName:  "Matches",
		Series:     []chart.Series{{Name: "Matches", Type: chart.Bar, Data: played, Labels: labels}},
	}
}

// RaceTitle is the title of a race frame.
func RaceTitle(d views.Descriptor, year int) string {
	mode := "Per year"
	if d.Cumulative {
		mode = "Cumulative"
	}
	return fmt.Sprintf("Top %d — %s by %s — %d", d.TopN, mode, strings.ToUpper(d.Metric), year)
}

// RaceFrame draws one snapshot of a bar race, highest value on top. Rows
// beyond the view's TopN are cut.
func RaceFrame(d views.Descriptor, f race.Frame) chart.Description {
	rows := rank.Top(f.Rows, d.TopN, func(r race.Row) float64 { return r.Value })
	names := make([]string, len(rows))
	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Team
		values[i] = r.Value
		labels[i] = strconv.FormatFloat(r.Value, 'f', -1, 64)
	}
	return chart.Description{
		Title:         RaceTitle(d, f.Year),
		Categories:    names,
		Horizontal:    true,
		Inverse:       true,
		MaxCategories: d.TopN,
		Series: []chart.Series{{
			Name:         strings.ToUpper(d.Metric),
			Type:         chart.Bar,
			Data:         values,
			Labels:       labels,
			RealtimeSort: true,
		}},
		Animation: &chart.Animation{
			Duration:       0,
			UpdateDuration: 700 * time.Millisecond,
			Easing:         "linear",
		},
	}
}
