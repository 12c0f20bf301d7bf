package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/keilerkonzept/footdash/internal/dashboard"
)

func TestLatencyWindow(t *testing.T) {
	w := newLatencyWindow(3)
	assert.Equal(t, latencyStats{}, w.stats())

	for _, d := range []time.Duration{10, 40, 20, 30} {
		w.observe(d * time.Millisecond)
	}
	got := w.stats()
	assert.Equal(t, []time.Duration{40 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, w.samples)
	assert.Equal(t, 30*time.Millisecond, got.last)
	assert.Equal(t, 40*time.Millisecond, got.longest)
	assert.Equal(t, 30*time.Millisecond, got.mean)
	assert.Equal(t, 3, got.samples)
}

func TestSelectMetrics(t *testing.T) {
	m := newSelectMetrics(16)
	m.observeSelect(time.Second, nil)
	assert.Equal(t, snapshot{}, m.snapshot(), "disabled metrics record nothing")

	m.setEnabled(true)
	m.observeSelect(10*time.Millisecond, nil)
	m.observeSelect(30*time.Millisecond, errors.New("boom"))
	m.observeSelect(time.Second, dashboard.ErrSuperseded)

	snap := m.snapshot()
	assert.Equal(t, uint64(3), snap.selections)
	assert.Equal(t, uint64(1), snap.failures)
	assert.Equal(t, uint64(1), snap.superseded)
	assert.Equal(t, 2, snap.latency.samples)
	assert.Equal(t, 30*time.Millisecond, snap.latency.longest)
	assert.False(t, snap.started.IsZero())
}

func TestFormatMetricDuration(t *testing.T) {
	assert.Equal(t, "0.0ms", formatMetricDuration(0))
	assert.Equal(t, "1.5ms", formatMetricDuration(1500*time.Microsecond))
}
