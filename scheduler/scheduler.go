// Package scheduler runs named periodic jobs and one-shot timers such as
// ground-drop fades.
package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the body of a scheduled task.
type TaskFn func()

// Scheduler owns named tickers and named one-shot timers. Names are unique
// per kind; registering a name again replaces the previous task.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]chan struct{}
	timers  map[string]*Handle
	stopped bool
	panics  atomic.Int64
	logger  *zap.Logger
}

// Handle is a cancellation token for one timer.
// Cancel is idempotent and safe to call after the task has fired.
type Handle struct {
	name     string
	timer    *time.Timer
	fired    atomic.Bool
	canceled atomic.Bool
	owner    *Scheduler
}

func (h *Handle) Name() string { return h.name }

// Fired reports whether the task ran.
func (h *Handle) Fired() bool { return h.fired.Load() }

// Canceled reports whether the task was stopped before it ran.
func (h *Handle) Canceled() bool { return h.canceled.Load() }

// Cancel stops the task if it has not fired yet.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.stop()
	if h.owner != nil {
		h.owner.forget(h)
	}
}

func (h *Handle) stop() {
	if h.timer != nil && h.timer.Stop() {
		h.canceled.Store(true)
	}
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tickers: make(map[string]chan struct{}),
		timers:  make(map[string]*Handle),
		logger:  logger.Named("scheduler"),
	}
}

// AddTicker runs fn every interval until Remove or Stop.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.tickers[name]; ok {
		close(old)
	}
	quit := make(chan struct{})
	s.tickers[name] = quit

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.run(name, fn)
			case <-quit:
				return
			}
		}
	}()
	s.logger.Debug("ticker registered", zap.String("name", name), zap.Duration("interval", interval))
}

// Schedule runs fn once after delay. On a nil Scheduler or after Stop the
// returned handle is already canceled and fn never runs.
func (s *Scheduler) Schedule(name string, delay time.Duration, fn TaskFn) *Handle {
	if s == nil {
		h := &Handle{name: name}
		h.canceled.Store(true)
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &Handle{name: name, owner: s}
	if s.stopped {
		h.canceled.Store(true)
		return h
	}
	if old, ok := s.timers[name]; ok {
		old.stop()
	}
	h.timer = time.AfterFunc(delay, func() {
		h.fired.Store(true)
		defer s.forget(h)
		s.run(name, fn)
	})
	s.timers[name] = h
	return h
}

func (s *Scheduler) run(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.logger.Error("task panicked", zap.String("task", name), zap.Any("recover", r), zap.Stack("stack"))
		}
	}()
	fn()
}

// forget drops h from the registry unless a newer task took its name.
func (s *Scheduler) forget(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.timers[h.name]; ok && cur == h {
		delete(s.timers, h.name)
	}
}

// Remove stops the ticker and the timer registered under name, if any.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	if quit, ok := s.tickers[name]; ok {
		close(quit)
		delete(s.tickers, name)
	}
	h := s.timers[name]
	s.mu.Unlock()
	h.Cancel()
}

// Pending returns the number of timers not yet fired or canceled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Panics counts recovered task panics.
func (s *Scheduler) Panics() int64 { return s.panics.Load() }

// Tickers returns the registered ticker names in sorted order.
func (s *Scheduler) Tickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop halts every ticker and cancels every pending timer. Later
// registrations are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for name, quit := range s.tickers {
		close(quit)
		delete(s.tickers, name)
	}
	for name, h := range s.timers {
		h.stop()
		delete(s.timers, name)
	}
	s.logger.Info("scheduler stopped")
}
