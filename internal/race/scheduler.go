package race

import (
	"context"
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Calling it more than once is fine.
type CancelFunc func()

type Scheduler interface {
	// Every runs task repeatedly at interval until the returned func is called.
	Every(interval time.Duration, task func()) CancelFunc
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, task func()) CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
	return CancelFunc(cancel)
}

// ManualScheduler fires tasks only when told to. Used for deterministic playback.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]func()
	armed  int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

func (s *ManualScheduler) Every(_ time.Duration, task func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.armed++
	s.tasks[id] = task
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.tasks, id)
	}
}

// Active is the number of tasks not yet cancelled.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Armed counts every Every call so far.
func (s *ManualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Fire runs every active task once.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	tasks := make([]func(), 0, len(s.tasks))
	for id := 0; id < s.nextID; id++ {
		if t, ok := s.tasks[id]; ok {
			tasks = append(tasks, t)
		}
	}
	s.mu.Unlock()
	for _, t := range tasks {
		t()
	}
}
