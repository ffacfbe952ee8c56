package engine

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned stop func is called.
// Calls to fn must never overlap.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler drives callbacks from a time.Ticker on one goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// ManualScheduler fires callbacks only when Advance is called. Tests use it
// to drive the engine deterministically.
type ManualScheduler struct {
	mu   sync.Mutex
	jobs map[int]func()
	next int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.jobs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
	}
}

// Advance fires every registered callback n times. Callbacks stopped
// during a round are not fired again.
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		ids := make([]int, 0, len(m.jobs))
		for id := range m.jobs {
			ids = append(ids, id)
		}
		m.mu.Unlock()

		for _, id := range ids {
			m.mu.Lock()
			fn, ok := m.jobs[id]
			m.mu.Unlock()
			if ok {
				fn()
			}
		}
	}
}

// Active returns the number of registered callbacks.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
