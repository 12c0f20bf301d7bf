// Package echarts is a chart.Sink that collects descriptions and writes them
// as a self-contained echarts HTML page.
package echarts

import (
	"errors"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/keilerkonzept/footdash/internal/chart"
)

const (
	DefaultWidth     = "1100px"
	DefaultHeight    = "600px"
	DefaultMaxFrames = 64
	errorColor       = "#c0392b"
)

var ErrNothingToRender = errors.New("no chart was painted")

type Option func(*Sink)

func WithSize(width, height string) Option {
	return func(s *Sink) {
		s.width, s.height = width, height
	}
}

// WithMaxFrames caps how many merged updates are kept after a reset.
func WithMaxFrames(n int) Option {
	return func(s *Sink) {
		s.maxFrames = n
	}
}

func WithPageTitle(title string) Option {
	return func(s *Sink) {
		s.pageTitle = title
	}
}

// Sink keeps the description of the last reset plus the updates merged
// into it. Each kept description becomes one chart of the page.
type Sink struct {
	mu        sync.Mutex
	width     string
	height    string
	pageTitle string
	maxFrames int
	frames    []chart.Description
	loading   bool
}

func New(opts ...Option) *Sink {
	s := &Sink{
		width:     DefaultWidth,
		height:    DefaultHeight,
		pageTitle: "footdash",
		maxFrames: DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) SetOption(desc chart.Description, resetPrevious bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resetPrevious {
		s.frames = s.frames[:0]
	}
	if s.maxFrames > 0 && len(s.frames) >= s.maxFrames {
		return
	}
	s.frames = append(s.frames, desc.Clone())
}

func (s *Sink) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

func (s *Sink) HideLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Sink) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Sink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Page builds the page from the descriptions kept so far.
func (s *Sink) Page() *components.Page {
	s.mu.Lock()
	frames := slices.Clone(s.frames)
	s.mu.Unlock()

	page := components.NewPage()
	page.SetPageTitle(s.pageTitle)
	for _, d := range frames {
		page.AddCharts(Chart(d, s.width, s.height))
	}
	return page
}

func (s *Sink) Render(w io.Writer) error {
	if s.Frames() == 0 {
		return ErrNothingToRender
	}
	return s.Page().Render(w)
}

// Chart converts a description into a go-echarts chart. Descriptions with a
// bar series become bar charts, everything else a line chart.
func Chart(d chart.Description, width, height string) components.Charter {
	global := globalOptions(d, width, height)
	if slices.ContainsFunc(d.Series, func(s chart.Series) bool { return s.Type == chart.Bar }) {
		return barChart(d, global)
	}
	return lineChart(d, global)
}

func globalOptions(d chart.Description, width, height string) []charts.GlobalOpts {
	title := opts.Title{Title: d.Title}
	if d.Error {
		title.TitleStyle = &opts.TextStyle{Color: errorColor}
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(d.Legend), Top: "30"}),
	}
	if d.Zoom {
		global = append(global, charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside"},
			opts.DataZoom{Type: "slider"},
		))
	}
	return global
}

func seriesAnimation(d chart.Description) []charts.SeriesOpts {
	if d.Animation == nil {
		return nil
	}
	return []charts.SeriesOpts{charts.WithAnimationOpts(opts.Animation{
		AnimationDuration:       int(d.Animation.Duration.Milliseconds()),
		AnimationDurationUpdate: int(d.Animation.UpdateDuration.Milliseconds()),
		AnimationEasing:         d.Animation.Easing,
		AnimationEasingUpdate:   d.Animation.Easing,
	})}
}

func barChart(d chart.Description, global []charts.GlobalOpts) *charts.Bar {
	bar := charts.NewBar()
	categoryAxis := opts.YAxis{Type: "category", Name: d.CategoryName, Inverse: opts.Bool(d.Inverse)}
	if d.MaxCategories > 0 {
		categoryAxis.Max = d.MaxCategories - 1
	}
	labelPosition := "top"
	if d.Horizontal {
		labelPosition = "right"
		global = append(global,
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: d.ValueName, Max: "dataMax"}),
			charts.WithYAxisOpts(categoryAxis),
		)
	} else {
		global = append(global,
			charts.WithXAxisOpts(opts.XAxis{
				Type:    "category",
				Name:    d.CategoryName,
				Inverse: opts.Bool(d.Inverse),
				Max:     categoryAxis.Max,
			}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: d.ValueName}),
		)
	}
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(d.Categories)
	for _, s := range d.Series {
		data := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.BarData{Value: v}
			if i < len(s.Labels) {
				data[i].Label = &opts.Label{
					Show:      opts.Bool(true),
					Position:  labelPosition,
					Formatter: types.FuncStr(templateSafe(s.Labels[i])),
				}
			}
		}
		bar.AddSeries(s.Name, data, append(seriesAnimation(d),
			charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack}))...)
	}
	if d.Horizontal {
		bar.XYReversal()
	}
	return bar
}

func lineChart(d chart.Description, global []charts.GlobalOpts) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: d.CategoryName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: d.ValueName}),
	)...)
	line.SetXAxis(d.Categories)
	for _, s := range d.Series {
		data := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.LineData{Value: v}
		}
		so := append(seriesAnimation(d),
			charts.WithLineChartOpts(opts.LineChart{Stack: s.Stack, Smooth: opts.Bool(true)}))
		if s.Area {
			so = append(so, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))
		}
		line.AddSeries(s.Name, data, so...)
	}
	return line
}

// templateSafe keeps echarts from reading braces in a label as placeholders.
func templateSafe(label string) string {
	return strings.NewReplacer("{", "(", "}", ")").Replace(label)
}
