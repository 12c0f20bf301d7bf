package race

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keilerkonzept/footdash/internal/chart"
	"github.com/keilerkonzept/footdash/internal/views"
	"github.com/keilerkonzept/footdash/log"
)

const DefaultInterval = 1200 * time.Millisecond

var (
	ErrSuperseded   = errors.New("race load superseded")
	ErrEmptyDataset = errors.New("race dataset is empty")
)

type State int

const (
	Idle State = iota
	Loading
	Playing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Loader fetches the snapshots for a race view.
type Loader func(ctx context.Context, d views.Descriptor) (Dataset, error)

// Painter turns a sorted frame into a chart description.
type Painter func(d views.Descriptor, f Frame) chart.Description

type Option func(*Animator)

func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(a *Animator) {
		a.sched = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Animator) {
		a.l = l
	}
}

// Animator replays a dataset as a looping, re-sorted bar chart.
// At most one scheduled task exists at any time; ticks of a cancelled
// run never reach the sink.
type Animator struct {
	mu       sync.Mutex
	sink     chart.Sink
	load     Loader
	paint    Painter
	sched    Scheduler
	interval time.Duration
	l        *log.Logger

	state      State
	run        uint64
	desc       views.Descriptor
	dataset    Dataset
	index      int
	cancel     CancelFunc
	cancelLoad context.CancelFunc
}

func NewAnimator(sink chart.Sink, load Loader, paint Painter, opts ...Option) *Animator {
	a := &Animator{
		sink:     sink,
		load:     load,
		paint:    paint,
		sched:    TickerScheduler{},
		interval: DefaultInterval,
		l:        log.Default().Named("race"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start cancels any running playback, loads the dataset for d and starts
// looping over it. The first frame is painted before Start returns.
func (a *Animator) Start(ctx context.Context, d views.Descriptor) error {
	loadCtx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()

	a.mu.Lock()
	a.stopLocked()
	a.run++
	run := a.run
	a.state = Loading
	a.desc = d
	a.cancelLoad = cancelLoad
	a.mu.Unlock()

	a.l.Debug("loading race", log.String("view", string(d.ID)), log.Uint64("run", run))
	ds, err := a.load(loadCtx, d)

	a.mu.Lock()
	defer a.mu.Unlock()
	if run != a.run {
		a.l.Debug("discarding superseded race", log.Uint64("run", run))
		return ErrSuperseded
	}
	a.cancelLoad = nil
	if ctx.Err() != nil {
		// The caller gave up on this load.
		a.state = Stopped
		return ErrSuperseded
	}
	if err != nil {
		a.state = Stopped
		return err
	}
	if len(ds) == 0 {
		a.state = Stopped
		return ErrEmptyDataset
	}

	a.dataset = ds
	a.index = 0
	a.state = Playing
	a.sink.SetOption(a.paint(d, ds[0].Sorted()), true)
	a.cancel = a.sched.Every(a.interval, func() { a.tick(run) })
	a.l.Debug("race playing",
		log.String("view", string(d.ID)),
		log.Int("frames", len(ds)),
		log.Duration("interval", a.interval))
	return nil
}

func (a *Animator) tick(run uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if run != a.run || a.state != Playing {
		return
	}
	a.index = (a.index + 1) % len(a.dataset)
	a.sink.SetOption(a.paint(a.desc, a.dataset[a.index].Sorted()), false)
}

// Stop cancels playback or a pending load. It is safe to call at any time.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Playing || a.state == Loading {
		a.l.Debug("stopping race", log.Uint64("run", a.run))
	}
	a.stopLocked()
	a.run++
	a.state = Stopped
}

func (a *Animator) stopLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.cancelLoad != nil {
		a.cancelLoad()
		a.cancelLoad = nil
	}
}

func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Animator) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Frame returns the frame currently shown; ok is false unless playing.
func (a *Animator) Frame() (Frame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Playing || len(a.dataset) == 0 {
		return Frame{}, false
	}
	return a.dataset[a.index], true
}

// Len is the number of frames of the current dataset.
func (a *Animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.dataset)
}
