// Package dashboard coordinates view selection: it composes queries, fetches
// data, renders it and owns the race animation of the single visible chart.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/chart"
	"github.com/keilerkonzept/footdash/internal/filter"
	"github.com/keilerkonzept/footdash/internal/race"
	"github.com/keilerkonzept/footdash/internal/render"
	"github.com/keilerkonzept/footdash/internal/views"
	"github.com/keilerkonzept/footdash/log"
)

// ErrSuperseded is returned when a newer selection replaced the request.
var ErrSuperseded = race.ErrSuperseded

// Fetcher is the part of the API client the controller needs.
type Fetcher interface {
	Yearly(ctx context.Context, q filter.Query) ([]api.YearlyStat, error)
	Opponents(ctx context.Context, q filter.Query) ([]api.OpponentStat, error)
	Race(ctx context.Context, path string, q filter.Query) ([]api.RaceItem, error)
	Tournaments(ctx context.Context) ([]api.Tournament, error)
}

// State is everything the controller knows about the visible view.
type State struct {
	Active     views.Descriptor
	HasActive  bool
	Generation uint64
	Loading    bool
	Animator   *race.Animator
}

type Option func(*Controller)

func WithRouter(r *views.Router) Option {
	return func(c *Controller) {
		c.router = r
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.l = l
	}
}

func WithFilters(s filter.State) Option {
	return func(c *Controller) {
		c.filters = s
	}
}

// WithRaceOptions passes options to the race animator.
func WithRaceOptions(opts ...race.Option) Option {
	return func(c *Controller) {
		c.raceOpts = append(c.raceOpts, opts...)
	}
}

type Controller struct {
	mu        sync.Mutex
	router    *views.Router
	fetcher   Fetcher
	sink      chart.Sink
	filters   filter.State
	state     State
	cancelGen context.CancelFunc
	raceOpts  []race.Option
	l         *log.Logger
}

func New(fetcher Fetcher, sink chart.Sink, opts ...Option) *Controller {
	c := &Controller{
		router:  views.DefaultRouter(),
		fetcher: fetcher,
		sink:    sink,
		filters: *filter.NewState(filter.DefaultTeam),
		l:       log.Default().Named("dashboard"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.filters.Normalize()
	c.state.Animator = race.NewAnimator(sink, c.loadRace, render.RaceFrame,
		append([]race.Option{race.WithLogger(c.l.Named("race"))}, c.raceOpts...)...)
	return c
}

// SelectView makes id the visible view. Any running race is stopped first,
// even when id turns out to be unknown. Load failures are painted as an
// error chart and returned as well.
func (c *Controller) SelectView(ctx context.Context, id views.ID) error {
	c.mu.Lock()
	c.state.Animator.Stop()
	d, err := c.router.Resolve(id)
	if err != nil {
		c.mu.Unlock()
		c.l.Warn("ignoring view selection", log.String("view", string(id)), log.ErrorField(err))
		return err
	}
	if c.cancelGen != nil {
		c.cancelGen()
	}
	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancelGen = cancel
	c.state.Generation++
	gen := c.state.Generation
	c.state.Active = d
	c.state.HasActive = true
	c.state.Loading = true
	c.sink.ShowLoading()
	fs := c.filters
	c.mu.Unlock()
	defer c.releaseLoading(gen)

	c.l.Debug("select view",
		log.String("view", string(id)),
		log.Uint64("generation", gen),
		log.String("filters", fs.Label()))

	if d.IsRace() {
		return c.startRace(genCtx, gen, d, fs)
	}
	desc, err := c.fetchAndRender(genCtx, d, fs)
	return c.apply(gen, d, desc, err)
}

// Reload selects the active view again with the current filters.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	active, ok := c.state.Active, c.state.HasActive
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.SelectView(ctx, active.ID)
}

func (c *Controller) fetchAndRender(
	ctx context.Context, d views.Descriptor, fs filter.State,
) (chart.Description, error) {
	q := filter.Compose(fs, d.Overrides())
	team := fs.TeamOrDefault()
	switch d.Kind {
	case views.KindTrend, views.KindGoals:
		rows, err := c.fetcher.Yearly(ctx, q)
		if err != nil {
			return render.Failed(d.Title), err
		}
		if d.Kind == views.KindGoals {
			return render.GoalsTrend(team, rows), nil
		}
		return render.Trend(team, rows), nil
	case views.KindRanking:
		rows, err := c.fetcher.Opponents(ctx, q)
		if err != nil {
			return render.Failed(d.Title), err
		}
		return render.Opponents(team, rows), nil
	default:
		return render.Failed(d.Title), fmt.Errorf("no renderer for view kind %q", d.Kind)
	}
}

func (c *Controller) startRace(ctx context.Context, gen uint64, d views.Descriptor, fs filter.State) error {
	err := c.state.Animator.Start(ctx, d)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, race.ErrSuperseded):
		// Still current: the load was stopped without a new view replacing
		// this one, e.g. by an unknown selection.
		return c.apply(gen, d, render.Failed(d.Title),
			fmt.Errorf("%s stopped before it was loaded: %w", d.ID, err))
	case errors.Is(err, race.ErrEmptyDataset):
		return c.apply(gen, d, render.Empty(fs.Label()), nil)
	default:
		return c.apply(gen, d, render.Failed(d.Title), err)
	}
}

func (c *Controller) loadRace(ctx context.Context, d views.Descriptor) (race.Dataset, error) {
	fs := c.Filters()
	items, err := c.fetcher.Race(ctx, d.Path, filter.Compose(fs, d.Overrides()))
	if err != nil {
		return nil, err
	}
	return race.FromItems(items, d.Metric), nil
}

// apply paints desc unless a newer selection was made in the meantime.
func (c *Controller) apply(gen uint64, d views.Descriptor, desc chart.Description, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.state.Generation {
		c.l.Debug("discarding stale result",
			log.String("view", string(d.ID)),
			log.Uint64("generation", gen),
			log.Uint64("current", c.state.Generation))
		return ErrSuperseded
	}
	if err != nil {
		c.l.Error("could not load view", log.String("view", string(d.ID)), log.ErrorField(err))
	}
	c.sink.SetOption(desc, true)
	return err
}

func (c *Controller) releaseLoading(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.state.Generation || !c.state.Loading {
		return
	}
	c.state.Loading = false
	c.sink.HideLoading()
}

// UpdateFilters changes the filter state. The view is not reloaded.
func (c *Controller) UpdateFilters(fn func(*filter.State)) filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.filters)
	c.filters.Normalize()
	return c.filters
}

func (c *Controller) Filters() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Snapshot returns a copy of the dashboard state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Animator() *race.Animator {
	return c.state.Animator
}

func (c *Controller) Views() []views.ID {
	return c.router.IDs()
}

// Tournaments lists tournaments for the filter selector. Failures are logged
// and yield an empty list.
func (c *Controller) Tournaments(ctx context.Context) []api.Tournament {
	list, err := c.fetcher.Tournaments(ctx)
	if err != nil {
		c.l.Warn("failed to load tournaments", log.ErrorField(err))
		return nil
	}
	return list
}

// Close stops playback and aborts the request in flight. Results still
// arriving afterwards are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Generation++
	if c.cancelGen != nil {
		c.cancelGen()
		c.cancelGen = nil
	}
	c.state.Animator.Stop()
	if c.state.Loading {
		c.state.Loading = false
		c.sink.HideLoading()
	}
}
