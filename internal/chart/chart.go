// Package chart holds the declarative chart description handed to a Sink.
// A sink is any rendering surface; the terminal UI and the echarts HTML
// writer are two of them.
package chart

import (
	"slices"
	"time"
)

type SeriesType string

const (
	Line SeriesType = "line"
	Bar  SeriesType = "bar"
)

type Series struct {
	Name  string
	Type  SeriesType
	Stack string
	Area  bool
	Data  []float64
	// Labels optionally annotates each data point.
	Labels       []string
	RealtimeSort bool
}

// Animation carries hints for sinks that animate updates.
type Animation struct {
	Duration       time.Duration
	UpdateDuration time.Duration
	Easing         string
}

type Description struct {
	Title string
	// Error marks a description that reports a failed load.
	Error bool
	// Categories label the category axis, in display order.
	Categories []string
	// Horizontal puts categories on the y axis (bar rankings).
	Horizontal bool
	// Inverse lists categories top-down.
	Inverse       bool
	CategoryName  string
	ValueName     string
	MaxCategories int
	Legend        bool
	Zoom          bool
	Series        []Series
	Animation     *Animation
}

func (d Description) Empty() bool { return len(d.Series) == 0 }

// Clone returns a deep copy so sinks may keep descriptions around.
func (d Description) Clone() Description {
	out := d
	out.Categories = slices.Clone(d.Categories)
	if d.Series != nil {
		out.Series = make([]Series, len(d.Series))
		for i, s := range d.Series {
			s.Data = slices.Clone(s.Data)
			s.Labels = slices.Clone(s.Labels)
			out.Series[i] = s
		}
	}
	if d.Animation != nil {
		a := *d.Animation
		out.Animation = &a
	}
	return out
}

// Sink accepts chart descriptions. resetPrevious replaces the current chart;
// false merges into it so the sink can animate the change.
type Sink interface {
	SetOption(desc Description, resetPrevious bool)
	ShowLoading()
	HideLoading()
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) SetOption(Description, bool) {}
func (discard) ShowLoading()                {}
func (discard) HideLoading()                {}
