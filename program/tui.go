package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/dashboard"
	"github.com/keilerkonzept/footdash/internal/filter"
	"github.com/keilerkonzept/footdash/internal/race"
	"github.com/keilerkonzept/footdash/internal/views"
	"github.com/keilerkonzept/footdash/log"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

var errNoTerminal = errors.New("the dashboard needs a terminal; use `footdash render` to write HTML instead")

// filterFlags seed the filter state from the command line.
type filterFlags struct {
	team       string
	tournament string
	from       string
	to         string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.team, "team", "", "Team to show (default: --default-team)")
	fs.StringVar(&f.tournament, "tournament", "", "Only count matches of this tournament")
	fs.StringVar(&f.from, "from", "", "First year of the range")
	fs.StringVar(&f.to, "to", "", "Last year of the range")
}

func (f filterFlags) state() filter.State {
	s := *filter.NewState(config.DefaultTeam)
	if strings.TrimSpace(f.team) != "" {
		s.Team = f.team
	}
	s.Tournament, s.YearFrom, s.YearTo = f.tournament, f.from, f.to
	s.Normalize()
	return s
}

type tuiFlags struct {
	filters filterFlags
	view    string
}

func registerTUIFlags(fs *pflag.FlagSet, f *tuiFlags) {
	f.filters.register(fs)
	fs.StringVar(&f.view, "view", string(views.Yearly), "View shown at start")
	fs.IntVar(&config.FPS, "fps", config.FPS, "Screen refresh rate (frames per second)")
	fs.IntVar(&config.ViewSplit, "view-split", config.ViewSplit, "Split the view at this % of the total screen width [15,60]")
	fs.BoolVar(&config.StatsEnabled, "stats", config.StatsEnabled, "Show request stats")
	fs.IntVar(&config.StatsWindow, "stats-window", config.StatsWindow, "Number of recent samples kept per metric")
	fs.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer")
	fs.BoolVar(&config.LogScale, "log-scale", config.LogScale, "Use a logarithmic value scale (default: linear)")
}

var rootTUIFlags tuiFlags

func init() {
	registerTUIFlags(rootCmd.Flags(), &rootTUIFlags)
}

func newTUICmd() *cobra.Command {
	var f tuiFlags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), f)
		},
	}
	registerTUIFlags(cmd.Flags(), &f)
	return cmd
}

func runTUI(ctx context.Context, f tuiFlags) error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return errNoTerminal
	}
	router := views.DefaultRouter()
	initial, err := router.Resolve(views.ID(f.view))
	if err != nil {
		return err
	}

	client := newClient()
	if config.WaitForAPI > 0 {
		if err := client.WaitForHealthy(ctx, config.WaitForAPI); err != nil {
			return err
		}
	}
	sink := newTermSink()
	ctrl := dashboard.New(client, sink,
		dashboard.WithRouter(router),
		dashboard.WithFilters(f.filters.state()),
		dashboard.WithLogger(log.Default().Named("dashboard")),
		dashboard.WithRaceOptions(race.WithInterval(config.RaceInterval)))
	defer ctrl.Close()

	m := newModel(ctx, ctrl, router, sink, initial.ID)
	opts := []tui.ProgramOption{tui.WithContext(ctx)}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	_, err = tui.NewProgram(m, opts...).Run()
	if errors.Is(err, tui.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

const (
	inputTeam = iota
	inputTournament
	inputFrom
	inputTo
	numInputs
)

type model struct {
	ctx     context.Context
	ctrl    *dashboard.Controller
	sink    *termSink
	metrics *selectMetrics
	initial views.ID

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int
	chartHeight    int

	logScale bool
	err      error
	inFlight int

	list    list.Model
	help    help.Model
	spinner spinner.Model

	editing bool
	focus   int
	inputs  []textinput.Model

	tournaments []api.Tournament
}

func newModel(
	ctx context.Context,
	ctrl *dashboard.Controller,
	router *views.Router,
	sink *termSink,
	initial views.ID,
) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle
	d.ShowDescription = true

	items := make([]list.Item, 0, len(router.IDs()))
	selected := 0
	for _, id := range router.IDs() {
		desc, _ := router.Resolve(id)
		if id == initial {
			selected = len(items)
		}
		items = append(items, viewItem{desc})
	}
	l := list.New(items, d, defaultWidth/3, defaultHeight)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.Select(selected)

	inputs := make([]textinput.Model, numInputs)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		switch i {
		case inputTeam:
			in.Placeholder = ctrl.Filters().DefaultTeam()
			in.Width = 20
		case inputTournament:
			in.Placeholder = "all tournaments"
			in.ShowSuggestions = true
			in.Width = 28
		case inputFrom, inputTo:
			in.Placeholder = "year"
			in.CharLimit = 4
			in.Width = 5
		}
		inputs[i] = in
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedFg

	metrics := newSelectMetrics(config.StatsWindow)
	metrics.setEnabled(config.StatsEnabled)

	m := &model{
		ctx:      ctx,
		ctrl:     ctrl,
		sink:     sink,
		metrics:  metrics,
		initial:  initial,
		logScale: config.LogScale,
		list:     l,
		help:     help.New(),
		spinner:  s,
		inputs:   inputs,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

type viewItem struct {
	views.Descriptor
}

func (i viewItem) Title() string       { return viewLabel(i.Descriptor) }
func (i viewItem) Description() string { return string(i.ID) }
func (i viewItem) FilterValue() string { return string(i.ID) }

func viewLabel(d views.Descriptor) string {
	if !d.IsRace() {
		return d.Title
	}
	mode := "per year"
	if d.Cumulative {
		mode = "cumulative"
	}
	return fmt.Sprintf("%s: %s %s", d.Title, mode, d.Metric)
}

type frameTickMsg time.Time

func doFrameTick() tui.Cmd {
	return tui.Every(time.Second/time.Duration(config.FPS), func(t time.Time) tui.Msg {
		return frameTickMsg(t)
	})
}

type selectedMsg struct {
	id   views.ID
	err  error
	took time.Duration
}

type tournamentsMsg []api.Tournament

func (m *model) selectCmd(id views.ID) tui.Cmd {
	m.inFlight++
	ctx, ctrl := m.ctx, m.ctrl
	return func() tui.Msg {
		start := time.Now()
		err := ctrl.SelectView(ctx, id)
		return selectedMsg{id: id, err: err, took: time.Since(start)}
	}
}

func (m *model) reloadCmd() tui.Cmd {
	m.inFlight++
	ctx, ctrl := m.ctx, m.ctrl
	return func() tui.Msg {
		start := time.Now()
		err := ctrl.Reload(ctx)
		return selectedMsg{err: err, took: time.Since(start)}
	}
}

func (m *model) loadTournaments() tui.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tui.Msg {
		return tournamentsMsg(ctrl.Tournaments(ctx))
	}
}

func (m *model) Init() tui.Cmd {
	return tui.Batch(m.selectCmd(m.initial), m.loadTournaments(), doFrameTick(), m.spinner.Tick)
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		return m, doFrameTick()
	case spinner.TickMsg:
		var cmd tui.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case selectedMsg:
		m.inFlight = max(0, m.inFlight-1)
		m.metrics.observeSelect(msg.took, msg.err)
		switch {
		case errors.Is(msg.err, dashboard.ErrSuperseded):
		case msg.err != nil:
			m.err = msg.err
		default:
			m.err = nil
		}
		return m, nil
	case tournamentsMsg:
		m.tournaments = msg
		names := make([]string, len(msg))
		for i, t := range msg {
			names[i] = t.Name
		}
		m.inputs[inputTournament].SetSuggestions(names)
		return m, nil
	case tui.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tui.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Up):
			m.list.CursorUp()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.list.CursorDown()
			return m, nil
		case key.Matches(msg, keys.Select):
			if item, ok := m.list.SelectedItem().(viewItem); ok {
				return m, m.selectCmd(item.ID)
			}
			return m, nil
		case key.Matches(msg, keys.Reload):
			return m, m.reloadCmd()
		case key.Matches(msg, keys.Filters):
			return m, m.openForm()
		case key.Matches(msg, keys.Scale):
			m.logScale = !m.logScale
			return m, nil
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.width, m.height)
			return m, nil
		}
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) openForm() tui.Cmd {
	fs := m.ctrl.Filters()
	m.inputs[inputTeam].SetValue(fs.Team)
	m.inputs[inputTournament].SetValue(fs.Tournament)
	m.inputs[inputFrom].SetValue(fs.YearFrom)
	m.inputs[inputTo].SetValue(fs.YearTo)
	m.editing = true
	m.focus = inputTeam
	return m.focusInput()
}

func (m *model) focusInput() tui.Cmd {
	var cmd tui.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *model) closeForm() {
	m.editing = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *model) updateForm(msg tui.KeyMsg) (tui.Model, tui.Cmd) {
	switch {
	case key.Matches(msg, formKeys.Cancel):
		m.closeForm()
		return m, nil
	case key.Matches(msg, formKeys.Next):
		m.focus = (m.focus + 1) % numInputs
		return m, m.focusInput()
	case key.Matches(msg, formKeys.Prev):
		m.focus = (m.focus + numInputs - 1) % numInputs
		return m, m.focusInput()
	case key.Matches(msg, formKeys.Apply):
		m.closeForm()
		m.ctrl.UpdateFilters(func(s *filter.State) {
			s.Team = m.inputs[inputTeam].Value()
			s.Tournament = m.inputs[inputTournament].Value()
			s.YearFrom = m.inputs[inputFrom].Value()
			s.YearTo = m.inputs[inputTo].Value()
		})
		return m, m.reloadCmd()
	}
	var cmd tui.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(width, config.ViewSplit)

	// status + filters + help, plus stats when enabled
	bottomLines := 3
	if m.help.ShowAll {
		bottomLines += 4
	}
	if config.StatsEnabled {
		bottomLines += 2
	}
	available := max(1, height-bottomLines)
	m.list.SetSize(max(1, m.leftPaneWidth), available)
	// the chart pane is wrapped in a border
	m.chartHeight = max(1, available-2)
}

func (m *model) View() string {
	left := styles.NewStyle().Width(m.leftPaneWidth).Render(m.list.View())

	st := m.sink.state()
	chartWidth := max(1, m.rightPaneWidth-2)
	var pane string
	switch {
	case st.painted:
		pane = renderChart(st.desc, chartWidth, m.chartHeight, m.logScale)
	case st.loading:
		pane = m.spinner.View() + " loading"
	default:
		pane = borderFg.Render("select a view")
	}
	if st.painted && st.loading {
		pane = styles.JoinVertical(styles.Left, m.spinner.View()+" loading", pane)
	}
	right := plotStyle.
		Width(chartWidth).
		Height(m.chartHeight).
		Render(pane)
	view := styles.JoinHorizontal(styles.Top, left, right)

	blocks := []string{view, m.statusLine(), m.filterLine()}
	if m.err != nil {
		blocks = append(blocks, errorStyle.Render("ERROR: "+m.err.Error()))
	}
	if config.StatsEnabled {
		blocks = append(blocks, m.statsBlock(st))
	}
	if m.editing {
		blocks = append(blocks, m.help.View(formKeys))
	} else {
		blocks = append(blocks, m.help.View(keys))
	}
	return styles.JoinVertical(styles.Left, blocks...)
}

func (m *model) statusLine() string {
	snap := m.ctrl.Snapshot()
	if !snap.HasActive {
		return borderFg.Render("no view")
	}
	parts := []string{selectedFg.Render(viewLabel(snap.Active))}
	if snap.Active.IsRace() {
		a := m.ctrl.Animator()
		if f, ok := a.Frame(); ok {
			parts = append(parts, fmt.Sprintf("%d (%d/%d)", f.Year, a.Index()+1, a.Len()))
		}
		parts = append(parts, a.State().String())
	}
	scale := borderFg.Render("LIN")
	if m.logScale {
		scale = borderFg.Render("LOG")
	}
	parts = append(parts, scale)
	return strings.Join(parts, borderFg.Render(" · "))
}

func (m *model) filterLine() string {
	if !m.editing {
		return borderFg.Render("filters: ") + m.ctrl.Filters().Label()
	}
	labels := []string{"team", "tournament", "from", "to"}
	parts := make([]string, numInputs)
	for i := range m.inputs {
		label := borderFg.Render(labels[i] + ": ")
		if i == m.focus {
			label = selectedFg.Render(labels[i] + ": ")
		}
		parts[i] = label + m.inputs[i].View()
	}
	return strings.Join(parts, "  ")
}

func (m *model) statsBlock(st sinkState) string {
	snap := m.metrics.snapshot()
	lat := snap.latency
	return borderFg.Render(strings.Join([]string{
		fmt.Sprintf("requests: %d  failed: %d  superseded: %d  in flight: %d  paints: %d  tournaments: %d",
			snap.selections, snap.failures, snap.superseded, m.inFlight, st.paints, len(m.tournaments)),
		fmt.Sprintf("latency last/avg/max: %s / %s / %s",
			formatMetricDuration(lat.last), formatMetricDuration(lat.mean), formatMetricDuration(lat.longest)),
	}, "\n"))
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.0ms"
	}
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	left = min(max(1, left), totalWidth-1)
	right = totalWidth - left

	// Keep panes readable when the terminal is wide enough.
	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	return max(1, left), max(1, right)
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Reload  key.Binding
	Filters key.Binding
	Scale   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Filters, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Filters, k.Reload, k.Scale},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show view"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Filters: key.NewBinding(
		key.WithKeys("f", "/"),
		key.WithHelp("f", "filters"),
	),
	Scale: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "log/lin"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Apply  key.Binding
	Cancel key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Apply, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Apply, k.Cancel}}
}

var formKeys = formKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
