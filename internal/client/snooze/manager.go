package snooze

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/client/repositories/snoozes"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// Registrar is the scheduling surface the manager needs. The scheduler
// satisfies it.
type Registrar interface {
	ScheduleOneShot(ctx context.Context, id string, at time.Time, a models.Alarm)
	Cancel(id string)
}

// Manager owns pending snooze entries: it creates them from a firing
// alarm's snapshot, persists them, registers the one-shot firings and
// prunes entries whose time has passed.
type Manager struct {
	mu        sync.Mutex
	entries   map[string]models.SnoozeEntry
	repo      snoozes.Repository
	registrar Registrar
	clock     clockx.Clock
	logger    logging.Logger
}

func NewManager(repo snoozes.Repository, reg Registrar, clock clockx.Clock, l logging.Logger) *Manager {
	return &Manager{
		entries:   make(map[string]models.SnoozeEntry),
		repo:      repo,
		registrar: reg,
		clock:     clock,
		logger:    l,
	}
}

// Snooze snapshots the given alarm state and schedules a one-shot firing
// after the given number of minutes. The returned entry carries the
// synthetic id the firing is registered under.
func (m *Manager) Snooze(ctx context.Context, a models.Alarm, minutes int) (models.SnoozeEntry, error) {
	if minutes <= 0 {
		return models.SnoozeEntry{}, fmt.Errorf("%w: snooze duration must be positive", common.ErrValidation)
	}

	fireAt := m.clock.Now().UTC().Add(time.Duration(minutes) * time.Minute)
	entry := models.NewSnoozeEntry(a, fireAt, fmt.Sprintf("%dm", minutes))

	m.mu.Lock()
	m.entries[entry.ID] = entry
	err := m.persistLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return models.SnoozeEntry{}, err
	}

	m.registrar.ScheduleOneShot(ctx, entry.ID, entry.FireAt, entry.Alarm())
	m.logger.Info(ctx, "snoozed alarm", "alarm_id", a.ID, "snooze_id", entry.ID, "fire_at", entry.FireAt)
	return entry, nil
}

// Resolve drops a fired entry from the pending set. The scheduler has
// already removed the one-shot, so only persistence is touched.
func (m *Manager) Resolve(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return
	}
	delete(m.entries, id)
	if err := m.persistLocked(ctx); err != nil {
		m.logger.Error(ctx, "persisting snoozes after resolve", "error", err)
	}
}

// ListActive returns pending entries ordered by fire time. Entries whose
// FireAt has passed are pruned and the pruned list is persisted.
func (m *Manager) ListActive(ctx context.Context) []models.SnoozeEntry {
	now := m.clock.Now()

	m.mu.Lock()
	pruned := false
	for id, e := range m.entries {
		if !e.FireAt.After(now) {
			delete(m.entries, id)
			pruned = true
		}
	}
	if pruned {
		if err := m.persistLocked(ctx); err != nil {
			m.logger.Error(ctx, "persisting pruned snoozes", "error", err)
		}
	}
	list := make([]models.SnoozeEntry, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e)
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].FireAt.Equal(list[j].FireAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].FireAt.Before(list[j].FireAt)
	})
	return list
}

// CancelAll unregisters every pending firing and clears the persisted list.
func (m *Manager) CancelAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.entries = make(map[string]models.SnoozeEntry)
	err := m.persistLocked(ctx)
	m.mu.Unlock()

	for _, id := range ids {
		m.registrar.Cancel(id)
	}
	return err
}

// Restore loads persisted entries on startup, re-registers the ones still
// in the future and discards the stale remainder.
func (m *Manager) Restore(ctx context.Context) error {
	list, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading snoozes: %w", err)
	}

	now := m.clock.Now()
	var kept []models.SnoozeEntry

	m.mu.Lock()
	m.entries = make(map[string]models.SnoozeEntry)
	for _, e := range list {
		if !e.FireAt.After(now) {
			m.logger.Info(ctx, "discarding expired snooze", "snooze_id", e.ID, "fire_at", e.FireAt)
			continue
		}
		m.entries[e.ID] = e
		kept = append(kept, e)
	}
	var persistErr error
	if len(kept) != len(list) {
		persistErr = m.persistLocked(ctx)
	}
	m.mu.Unlock()

	for _, e := range kept {
		m.registrar.ScheduleOneShot(ctx, e.ID, e.FireAt, e.Alarm())
	}
	return persistErr
}

func (m *Manager) persistLocked(ctx context.Context) error {
	list := make([]models.SnoozeEntry, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if err := m.repo.SaveAll(ctx, list); err != nil {
		return fmt.Errorf("saving snoozes: %w", err)
	}
	return nil
}
