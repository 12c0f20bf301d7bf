package main

import (
	"sync"

	"github.com/keilerkonzept/footdash/internal/chart"
)

// termSink buffers the latest description for the terminal UI, which pulls
// it on every frame tick. Every description is complete, so a merge
// replaces the buffered one just like a reset does.
type termSink struct {
	mu      sync.Mutex
	desc    chart.Description
	painted bool
	loading bool
	paints  uint64
}

func newTermSink() *termSink {
	return &termSink{}
}

func (s *termSink) SetOption(desc chart.Description, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = desc.Clone()
	s.painted = true
	s.paints++
}

func (s *termSink) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

func (s *termSink) HideLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

type sinkState struct {
	desc    chart.Description
	painted bool
	loading bool
	paints  uint64
}

func (s *termSink) state() sinkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sinkState{desc: s.desc, painted: s.painted, loading: s.loading, paints: s.paints}
}
