package lifecycle

import (
	"log"
	"sync"
	"time"

	"github.com/commonhall/agora/src/shared/types"
)

const (
	// idleRecheck is the fallback wake interval when no proposal is voting.
	idleRecheck = time.Hour
	// errorRetry is the wake interval after a failed deadline query.
	errorRetry = 5 * time.Minute
)

// Scheduler owns the single armed timer for proposal deadlines. Instead of
// polling, it wakes at the earliest end time among voting proposals,
// finalizes everything due, and re-arms. Reschedule always replaces the
// pending timer, so a new sooner deadline takes effect immediately.
type Scheduler struct {
	engine  *Engine
	mu      sync.Mutex
	timer   *time.Timer
	started bool
}

func newScheduler(e *Engine) *Scheduler {
	return &Scheduler{engine: e}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.Reschedule()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Reschedule cancels the pending timer and arms a new one for the next
// deadline. No-op until Start.
func (s *Scheduler) Reschedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	delay := s.nextDelay()
	s.timer = time.AfterFunc(delay, s.fire)
}

func (s *Scheduler) fire() {
	s.engine.FinalizeDue()
	s.Reschedule()
}

func (s *Scheduler) nextDelay() time.Duration {
	active, err := s.engine.store.ByStatus(types.StatusVoting)
	if err != nil {
		log.Printf("scheduler: list voting proposals: %v", err)
		return errorRetry
	}

	deadlines := make([]time.Time, len(active))
	for i := range active {
		deadlines[i] = active[i].EndTime
	}

	next, ok := NextWake(deadlines)
	if !ok {
		return idleRecheck
	}
	delay := next.Sub(s.engine.now())
	if delay < 0 {
		delay = 0
	}
	return delay
}

// NextWake returns the earliest deadline, or false when none exist.
func NextWake(deadlines []time.Time) (time.Time, bool) {
	if len(deadlines) == 0 {
		return time.Time{}, false
	}
	min := deadlines[0]
	for _, d := range deadlines[1:] {
		if d.Before(min) {
			min = d
		}
	}
	return min, true
}
