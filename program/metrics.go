package main

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/keilerkonzept/footdash/internal/dashboard"
)

// latencyWindow keeps the most recent samples, oldest first.
type latencyWindow struct {
	size    int
	samples []time.Duration
}

func newLatencyWindow(size int) *latencyWindow {
	size = max(1, size)
	return &latencyWindow{size: size, samples: make([]time.Duration, 0, size)}
}

func (w *latencyWindow) observe(d time.Duration) {
	if len(w.samples) < w.size {
		w.samples = append(w.samples, d)
		return
	}
	copy(w.samples, w.samples[1:])
	w.samples[len(w.samples)-1] = d
}

type latencyStats struct {
	last    time.Duration
	longest time.Duration
	mean    time.Duration
	samples int
}

func (w *latencyWindow) stats() latencyStats {
	n := len(w.samples)
	if n == 0 {
		return latencyStats{}
	}
	return latencyStats{
		last:    w.samples[n-1],
		longest: lo.Max(w.samples),
		mean:    lo.Sum(w.samples) / time.Duration(n),
		samples: n,
	}
}

// selectMetrics tracks how long view selections take to paint.
type selectMetrics struct {
	enabled atomic.Bool

	startedNs  atomic.Int64
	selections atomic.Uint64
	failures   atomic.Uint64
	superseded atomic.Uint64

	latency *latencyWindow
}

func newSelectMetrics(window int) *selectMetrics {
	m := &selectMetrics{
		latency: newLatencyWindow(window),
	}
	m.startedNs.Store(time.Now().UnixNano())
	return m
}

func (m *selectMetrics) setEnabled(v bool) { m.enabled.Store(v) }
func (m *selectMetrics) isEnabled() bool   { return m.enabled.Load() }

func (m *selectMetrics) observeSelect(d time.Duration, err error) {
	if !m.isEnabled() {
		return
	}
	m.selections.Add(1)
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		m.superseded.Add(1)
		return
	case err != nil:
		m.failures.Add(1)
	}
	m.latency.observe(d)
}

type snapshot struct {
	started    time.Time
	selections uint64
	failures   uint64
	superseded uint64
	latency    latencyStats
}

func (m *selectMetrics) snapshot() snapshot {
	if !m.isEnabled() {
		return snapshot{}
	}
	started := time.Time{}
	if ns := m.startedNs.Load(); ns != 0 {
		started = time.Unix(0, ns)
	}
	return snapshot{
		started:    started,
		selections: m.selections.Load(),
		failures:   m.failures.Load(),
		superseded: m.superseded.Load(),
		latency:    m.latency.stats(),
	}
}
