// Package charttest provides a recording chart.Sink for tests.
package charttest

import (
	"sync"
	"time"

	"github.com/keilerkonzept/footdash/internal/chart"
)

type Call struct {
	Desc  chart.Description
	Reset bool
}

type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	loading  bool
	shows    int
	hides    int
	notifyCh chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{notifyCh: make(chan struct{}, 1024)}
}

func (r *Recorder) SetOption(desc chart.Description, resetPrevious bool) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Desc: desc.Clone(), Reset: resetPrevious})
	r.mu.Unlock()
	select {
	case r.notifyCh <- struct{}{}:
	default:
	}
}

func (r *Recorder) ShowLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = true
	r.shows++
}

func (r *Recorder) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	r.hides++
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent description; ok is false if none was set.
func (r *Recorder) Last() (chart.Description, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return chart.Description{}, false
	}
	return r.calls[len(r.calls)-1].Desc, true
}

func (r *Recorder) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *Recorder) LoadingCounts() (shows, hides int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shows, r.hides
}

// WaitFor blocks until at least n descriptions were set or within elapses.
func (r *Recorder) WaitFor(n int, within time.Duration) bool {
	deadline := time.After(within)
	for {
		if r.Len() >= n {
			return true
		}
		select {
		case <-r.notifyCh:
		case <-deadline:
			return r.Len() >= n
		}
	}
}
