// Package reminders arms one-shot timers for task reminders.
//
// The scheduler never diffs: every task-set mutation calls Rebuild, which
// cancels all outstanding timers and arms fresh ones from the active set.
// Reminders whose fire time has passed are dropped, so nothing fires late,
// including reminders that elapsed while the process was not running.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/logging"
)

// Event is delivered when a reminder fires.
type Event struct {
	TaskID  string
	Title   string
	FiresAt time.Time
}

// Persister stores the derived reminder entries.
type Persister interface {
	PersistReminders(ctx context.Context, entries []models.ReminderEntry) error
}

// Timer is the part of *time.Timer the scheduler uses.
type Timer interface {
	Stop() bool
}

type Scheduler struct {
	mu     sync.Mutex
	timers map[string]Timer
	// gen invalidates callbacks of timers that were cancelled too late to stop.
	gen uint64

	emit      func(Event)
	persist   Persister
	log       logging.Logger
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) Timer
}

type Option func(*Scheduler)

func WithPersister(p Persister) Option {
	return func(s *Scheduler) { s.persist = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithAfterFunc replaces time.AfterFunc.
func WithAfterFunc(fn func(d time.Duration, f func()) Timer) Option {
	return func(s *Scheduler) { s.afterFunc = fn }
}

// New returns a scheduler that calls emit from the timer goroutine.
func New(emit func(Event), opts ...Option) *Scheduler {
	s := &Scheduler{
		timers: make(map[string]Timer),
		emit:   emit,
		log:    logging.Nop(),
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rebuild replaces every armed timer with timers derived from tasks and
// persists the derived entries. It returns the number of armed timers.
func (s *Scheduler) Rebuild(ctx context.Context, tasks []models.Task) (int, error) {
	entries := models.DeriveReminders(tasks)
	now := s.now()

	s.mu.Lock()
	s.cancelLocked()
	gen := s.gen
	for _, e := range entries {
		if !e.FiresAt.After(now) {
			continue
		}
		s.timers[e.TaskID] = s.afterFunc(e.FiresAt.Sub(now), func() { s.fire(gen, e) })
	}
	armed := len(s.timers)
	s.mu.Unlock()

	s.log.Debug(ctx, "reminders rebuilt", "derived", len(entries), "armed", armed)

	if s.persist == nil {
		return armed, nil
	}
	return armed, s.persist.PersistReminders(ctx, entries)
}

func (s *Scheduler) fire(gen uint64, e models.ReminderEntry) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, e.TaskID)
	s.mu.Unlock()

	if s.emit != nil {
		s.emit(Event{TaskID: e.TaskID, Title: e.Title, FiresAt: e.FiresAt})
	}
}

// Armed is the number of timers that have not fired or been cancelled.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every armed timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.gen++
}
