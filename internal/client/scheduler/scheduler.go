// Package scheduler converts alarm definitions into time-triggered fire
// events. Pending occurrences live in a min-heap keyed by fire time; a
// single background loop checks the heap once per minute. The scheduler
// never calls the playback service itself; it emits fire events consumed
// by the device wake monitor, keeping timing separate from reliability.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// FireEvent is emitted when a scheduled minute arrives. Alarm is a
// snapshot taken at scheduling time; OneShot marks spent single
// occurrences (including snoozes) that will not be rescheduled.
type FireEvent struct {
	EntryID string
	Alarm   models.Alarm
	At      time.Time
	OneShot bool
	Snooze  bool
}

// FireFunc consumes fire events. It runs on its own goroutine; a panic
// inside the handler is recovered so one bad alarm cannot stop the loop.
type FireFunc func(ctx context.Context, ev FireEvent)

// PreFireFunc is notified as soon as an occurrence is placed in the heap,
// giving the wake monitor its pre-wake lead time.
type PreFireFunc func(ev FireEvent)

type Scheduler struct {
	mu      sync.Mutex
	entries entryHeap
	byID    map[string]*entry

	clock        clockx.Clock
	logger       logging.Logger
	fire         FireFunc
	preFire      PreFireFunc
	tickInterval time.Duration
}

type Option func(*Scheduler)

// WithTickInterval overrides the default one-minute tick, used by tests.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

// WithPreFire registers the pre-fire subscriber.
func WithPreFire(fn PreFireFunc) Option {
	return func(s *Scheduler) { s.preFire = fn }
}

func New(clock clockx.Clock, l logging.Logger, fire FireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		byID:         make(map[string]*entry),
		clock:        clock,
		logger:       l.With("module", "scheduler"),
		fire:         fire,
		tickInterval: time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule registers the alarm's next occurrence, replacing any pending
// entry for the same id. Inactive alarms are simply cancelled. A failed
// next-occurrence computation is logged and the alarm skipped for this
// cycle; it stays in the store and is retried on the next mutation.
func (s *Scheduler) Schedule(ctx context.Context, a models.Alarm) error {
	s.Cancel(a.ID)

	if !a.Active {
		return nil
	}

	now := s.clock.Now()
	next, err := NextOccurrence(a, now)
	if err != nil {
		s.logger.Error(ctx, "cannot compute next occurrence, skipping alarm",
			"alarm_id", a.ID, "error", err)
		return err
	}

	s.push(&entry{id: a.ID, fireAt: next, alarm: a.Clone(), oneShot: len(a.Days) == 0})
	s.logger.Info(ctx, "alarm scheduled", "alarm_id", a.ID, "fire_at", next)

	s.notifyPreFire(a.ID, next, a, false)
	return nil
}

// ScheduleOneShot registers a single trigger at an absolute instant under
// a synthetic id, used for snoozes. The original alarm's recurring entry
// is unaffected.
func (s *Scheduler) ScheduleOneShot(ctx context.Context, id string, at time.Time, a models.Alarm) {
	s.Cancel(id)
	s.push(&entry{id: id, fireAt: at, alarm: a.Clone(), oneShot: true})
	s.logger.Info(ctx, "one-shot scheduled", "entry_id", id, "fire_at", at)
	s.notifyPreFire(id, at, a, true)
}

// Cancel removes any pending entry for the given id.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		heap.Remove(&s.entries, e.index)
		delete(s.byID, id)
	}
}

// CancelAll drops every pending entry; used on shutdown.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]*entry)
}

// Pending returns the number of heap entries, for tests and status output.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NextFireTime reports the pending fire time for an id, if any.
func (s *Scheduler) NextFireTime(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		return e.fireAt, true
	}
	return time.Time{}, false
}

// Run drives the clock-tick loop until ctx is cancelled. It owns the only
// ticker in the core.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info(ctx, "scheduler loop started", "tick", s.tickInterval.String())

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler loop stopped")
			return
		}
	}
}

// tick fires every entry whose scheduled minute has arrived. Recurring
// alarms are rescheduled for their next occurrence; one-shots are spent.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now()

	var due []*entry
	s.mu.Lock()
	for len(s.entries) > 0 && !s.entries[0].fireAt.After(now) {
		e := heap.Pop(&s.entries).(*entry)
		delete(s.byID, e.id)
		due = append(due, e)
	}
	s.mu.Unlock()

	for _, e := range due {
		ev := FireEvent{EntryID: e.id, Alarm: e.alarm, At: e.fireAt, OneShot: e.oneShot, Snooze: e.id != e.alarm.ID}
		go s.safeFire(ctx, ev)

		if !e.oneShot {
			next, err := NextOccurrence(e.alarm, e.fireAt.Add(time.Minute))
			if err != nil {
				s.logger.Error(ctx, "reschedule failed, alarm skipped until next mutation",
					"alarm_id", e.id, "error", err)
				continue
			}
			s.push(&entry{id: e.id, fireAt: next, alarm: e.alarm, oneShot: false})
			s.notifyPreFire(e.id, next, e.alarm, false)
		}
	}
}

func (s *Scheduler) safeFire(ctx context.Context, ev FireEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "fire handler panicked", "entry_id", ev.EntryID, "panic", r)
		}
	}()
	s.fire(ctx, ev)
}

func (s *Scheduler) push(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.entries, e)
	s.byID[e.id] = e
}

func (s *Scheduler) notifyPreFire(id string, at time.Time, a models.Alarm, snooze bool) {
	if s.preFire != nil {
		s.preFire(FireEvent{EntryID: id, Alarm: a.Clone(), At: at, OneShot: len(a.Days) == 0, Snooze: snooze})
	}
}
