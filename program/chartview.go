package main

import (
	"math"
	"slices"
	"strconv"
	"strings"

	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/keilerkonzept/footdash/internal/chart"
)

var (
	titleStyle = styles.NewStyle().Bold(true)
	errorStyle = styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
	barStyle   = styles.NewStyle().Foreground(selectedColor)

	// legend colors roughly matching the plot line colors
	seriesColors = []styles.AdaptiveColor{
		{Light: "0", Dark: "9"},
		{Light: "240", Dark: "244"},
		{Light: "250", Dark: "252"},
	}
)

// renderChart draws d into a width x height block of terminal cells.
func renderChart(d chart.Description, width, height int, logScale bool) string {
	width, height = max(1, width), max(1, height)
	title := titleStyle.Render(truncate(d.Title, width))
	if d.Error {
		title = errorStyle.Bold(true).Render(truncate(d.Title, width))
	}
	if d.Empty() || height < 2 {
		return title
	}
	var body string
	if slices.ContainsFunc(d.Series, func(s chart.Series) bool { return s.Type == chart.Bar }) {
		body = renderBars(d, width, height-1, logScale)
	} else {
		body = renderLines(d, width, height-1, logScale)
	}
	return styles.JoinVertical(styles.Left, title, body)
}

func scaled(v float64, logScale bool) float64 {
	if logScale {
		return math.Log1p(max(0, v))
	}
	return v
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderBars draws the first bar series as horizontal bars, one category per line.
func renderBars(d chart.Description, width, height int, logScale bool) string {
	s := d.Series[slices.IndexFunc(d.Series, func(s chart.Series) bool { return s.Type == chart.Bar })]

	idx := make([]int, 0, len(d.Categories))
	for i := range d.Categories {
		if i < len(s.Data) {
			idx = append(idx, i)
		}
	}
	if d.Horizontal && !d.Inverse {
		slices.Reverse(idx)
	}
	limit := len(idx)
	if d.MaxCategories > 0 {
		limit = min(limit, d.MaxCategories)
	}
	idx = idx[:min(limit, height)]

	names := make([]string, len(idx))
	labels := make([]string, len(idx))
	nameW, labelW := 0, 0
	top := 0.0
	for row, i := range idx {
		names[row] = truncate(d.Categories[i], max(4, width/3))
		if i < len(s.Labels) && s.Labels[i] != "" {
			labels[row] = s.Labels[i]
		} else {
			labels[row] = formatValue(s.Data[i])
		}
		nameW = max(nameW, styles.Width(names[row]))
		labelW = max(labelW, styles.Width(labels[row]))
		top = max(top, scaled(s.Data[i], logScale))
	}
	barW := max(1, width-nameW-labelW-2)

	lines := make([]string, len(idx))
	for row, i := range idx {
		n := 0
		if top > 0 {
			n = int(math.Round(scaled(s.Data[i], logScale) / top * float64(barW)))
		}
		lines[row] = padRight(names[row], nameW) + " " +
			barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barW-n) + " " +
			labels[row]
	}
	return strings.Join(lines, "\n")
}

// renderLines plots every series with drawille, stacking series that share
// a stack name.
func renderLines(d chart.Description, width, height int, logScale bool) string {
	points := len(d.Categories)
	for _, s := range d.Series {
		points = max(points, len(s.Data))
	}
	if points == 0 {
		return ""
	}
	plotHeight := max(1, height-2)

	data := make([][]float64, len(d.Series))
	stacks := make(map[string][]float64)
	for i, s := range d.Series {
		series := make([]float64, max(2, points))
		for j := range points {
			if j < len(s.Data) {
				series[j] = s.Data[j]
			}
		}
		if s.Stack != "" {
			base := stacks[s.Stack]
			if base == nil {
				base = make([]float64, len(series))
			}
			for j := range series {
				series[j] += base[j]
			}
			stacks[s.Stack] = slices.Clone(series)
		}
		if points == 1 {
			series[1] = series[0]
		}
		for j := range series {
			series[j] = scaled(series[j], logScale)
		}
		data[i] = series
	}

	var highlight, dim, faint plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim, faint = plot.Red, plot.DimGray, plot.LightGray
	} else {
		highlight, dim, faint = plot.Black, plot.DimGray, plot.LightGray
	}
	colors := make([]plot.Color, len(data))
	for i := range colors {
		switch i % 3 {
		case 0:
			colors[i] = highlight
		case 1:
			colors[i] = dim
		default:
			colors[i] = faint
		}
	}

	p := plot.NewCanvas(width, plotHeight)
	p.NumDataPoints = max(2, points)
	p.ShowAxis = false
	p.LineColors = colors
	p.Fill(data)

	return styles.JoinVertical(styles.Left, p.String(), axisLabels(d.Categories, width), legend(d))
}

func axisLabels(categories []string, width int) string {
	if len(categories) == 0 {
		return ""
	}
	first, last := categories[0], categories[len(categories)-1]
	if len(categories) == 1 || styles.Width(first)+styles.Width(last)+1 > width {
		return borderFg.Render(truncate(first, width))
	}
	gap := width - styles.Width(first) - styles.Width(last)
	return borderFg.Render(first + strings.Repeat(" ", gap) + last)
}

func legend(d chart.Description) string {
	if !d.Legend {
		return ""
	}
	parts := make([]string, 0, len(d.Series))
	for i, s := range d.Series {
		c := seriesColors[i%len(seriesColors)]
		parts = append(parts, styles.NewStyle().Foreground(c).Render("■")+" "+s.Name)
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, width int) string {
	if styles.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && styles.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func padRight(s string, width int) string {
	if w := styles.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
