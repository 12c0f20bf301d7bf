package race

import (
	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/rank"
)

type Row struct {
	Team  string
	Value float64
}

// Frame is one ranked snapshot.
type Frame struct {
	Year int
	Rows []Row
}

// Sorted returns the frame with rows ordered by value, highest first.
func (f Frame) Sorted() Frame {
	return Frame{
		Year: f.Year,
		Rows: rank.Descending(f.Rows, func(r Row) float64 { return r.Value }),
	}
}

// Dataset is ordered by ascending year.
type Dataset []Frame

// FromItems picks metric out of every entry and orders frames by year.
func FromItems(items []api.RaceItem, metric string) Dataset {
	frames := make(Dataset, 0, len(items))
	for _, it := range items {
		rows := make([]Row, 0, len(it.Top))
		for _, e := range it.Top {
			rows = append(rows, Row{Team: e.Team, Value: e.Value(metric)})
		}
		frames = append(frames, Frame{Year: it.Year, Rows: rows})
	}
	return rank.Ascending(frames, func(f Frame) float64 { return float64(f.Year) })
}
