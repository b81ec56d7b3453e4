// Package remind arms one-shot reminders for tasks that ask for them.
package remind

import (
	"sync"
	"time"

	"github.com/blizx/zenith/internal/domain"
	"github.com/blizx/zenith/internal/platform/timeouts"
)

// Notifier receives the reminder when the delay elapses.
type Notifier interface {
	Notify(task domain.Task)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(task domain.Task)

// Notify calls the wrapped function.
func (f NotifierFunc) Notify(task domain.Task) { f(task) }

// Scheduler arms at most one pending reminder per task. Completing or
// deleting the task before the delay elapses cancels its reminder.
type Scheduler struct {
	notifier Notifier
	delay    time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay overrides the reminder delay.
func WithDelay(delay time.Duration) Option {
	return func(s *Scheduler) { s.delay = delay }
}

// New creates a scheduler that notifies after the standard reminder delay.
func New(notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: notifier,
		delay:    timeouts.ReminderDelay,
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms a reminder for the task. Tasks without the reminder flag,
// or already done, are ignored. Rescheduling an armed task restarts its
// delay.
func (s *Scheduler) Schedule(task domain.Task) {
	if !task.RemindEnabled || task.Status == domain.TaskStatusDone {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[task.ID]; ok {
		existing.Stop()
	}
	s.timers[task.ID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, task.ID)
		s.mu.Unlock()
		s.notifier.Notify(task)
	})
}

// Cancel disarms a pending reminder for the task, if any.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
}

// Pending reports whether a reminder is armed for the task.
func (s *Scheduler) Pending(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[taskID]
	return ok
}

// Stop disarms every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
