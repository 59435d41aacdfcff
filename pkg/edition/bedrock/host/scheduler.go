package host

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/go-logr/logr"
	"go.uber.org/atomic"
)

// TickInterval is the duration of a server tick, used by Run when no
// interval is given.
const TickInterval = 50 * time.Millisecond

// TickScheduler is a Scheduler driven by explicit calls to Tick, for hosts
// without a scheduler of their own and for tests.
type TickScheduler struct {
	log     logr.Logger
	current atomic.Uint64

	mu    sync.Mutex
	tasks deque.Deque[task]
}

type task struct {
	due uint64
	fn  func()
}

var _ Scheduler = (*TickScheduler)(nil)

// NewTickScheduler returns a new TickScheduler.
func NewTickScheduler(log logr.Logger) *TickScheduler {
	return &TickScheduler{log: log}
}

// ScheduleDelayed implements Scheduler.
// A delay of less than one tick runs fn on the next tick.
func (s *TickScheduler) ScheduleDelayed(ticks int, fn func()) {
	if ticks < 1 {
		ticks = 1
	}
	s.mu.Lock()
	s.tasks.PushBack(task{due: s.current.Load() + uint64(ticks), fn: fn})
	s.mu.Unlock()
}

// Current returns the number of ticks run.
func (s *TickScheduler) Current() uint64 { return s.current.Load() }

// Pending returns the number of tasks not yet run.
func (s *TickScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Len()
}

// Tick advances the scheduler by one tick and runs all tasks that became
// due, in the order they were scheduled.
func (s *TickScheduler) Tick() {
	now := s.current.Inc()

	s.mu.Lock()
	var due []func()
	for n := s.tasks.Len(); n > 0; n-- {
		t := s.tasks.PopFront()
		if t.due <= now {
			due = append(due, t.fn)
			continue
		}
		s.tasks.PushBack(t)
	}
	s.mu.Unlock()

	// Tasks may schedule further tasks.
	for _, fn := range due {
		s.run(fn)
	}
}

func (s *TickScheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(nil, "recovered panic in scheduled task", "panic", r, "tick", s.current.Load())
		}
	}()
	fn()
}

// Run calls Tick every interval until ctx is canceled.
// A non-positive interval means TickInterval.
func (s *TickScheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = TickInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick()
		}
	}
}
