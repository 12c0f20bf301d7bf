package echarts

import (
	"bytes"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keilerkonzept/footdash/internal/chart"
)

func raceFrame(title string, teams ...string) chart.Description {
	data := make([]float64, len(teams))
	for i := range teams {
		data[i] = float64(len(teams) - i)
	}
	return chart.Description{
		Title:         title,
		Categories:    teams,
		Horizontal:    true,
		Inverse:       true,
		MaxCategories: 10,
		Series:        []chart.Series{{Name: "WINS", Type: chart.Bar, Data: data, Labels: teams}},
	}
}

func TestSink_ResetAndMerge(t *testing.T) {
	s := New(WithMaxFrames(2))
	s.SetOption(raceFrame("2000", "A", "B"), true)
	s.SetOption(raceFrame("2001", "B", "A"), false)
	s.SetOption(raceFrame("2002", "C", "B"), false)
	assert.Equal(t, 2, s.Frames())

	s.SetOption(chart.Description{Title: "Failed to load opponents", Error: true}, true)
	assert.Equal(t, 1, s.Frames())
}

func TestSink_Loading(t *testing.T) {
	s := New()
	s.ShowLoading()
	assert.True(t, s.Loading())
	s.HideLoading()
	assert.False(t, s.Loading())
}

func TestSink_RenderNothing(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, New().Render(&buf), ErrNothingToRender)
	assert.Zero(t, buf.Len())
}

func TestSink_Render(t *testing.T) {
	s := New(WithPageTitle("England"))
	s.SetOption(raceFrame("Top 10 by WINS 2000", "Scotland", "Wales"), true)

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	html := buf.String()
	assert.Contains(t, html, "<title>England</title>")
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Scotland")
	assert.Contains(t, html, "Top 10 by WINS 2000")
}

func TestChart_Kind(t *testing.T) {
	line := chart.Description{
		Title:      "England",
		Categories: []string{"2000", "2001"},
		Series: []chart.Series{
			{Name: "Wins", Type: chart.Line, Stack: "total", Area: true, Data: []float64{1, 2}},
		},
	}
	_, isLine := Chart(line, DefaultWidth, DefaultHeight).(*charts.Line)
	assert.True(t, isLine)

	_, isBar := Chart(raceFrame("x", "A"), DefaultWidth, DefaultHeight).(*charts.Bar)
	assert.True(t, isBar)

	// a description without series still renders its title
	_, isLine = Chart(chart.Description{Title: `No data for "Narnia"`}, DefaultWidth, DefaultHeight).(*charts.Line)
	assert.True(t, isLine)
}

func TestTemplateSafe(t *testing.T) {
	assert.Equal(t, "12  (W8/D2/L2, 67%)", templateSafe("12  (W8/D2/L2, 67%)"))
	assert.Equal(t, "(a)", templateSafe("{a}"))
}
