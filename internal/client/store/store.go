// Package store owns the authoritative in-memory alarm list. Every
// mutation (foreground edits, snooze bookkeeping, sync merges) funnels
// through one mutex so the clock-tick loop, the CLI and the sync timer
// never race. The raw collection is never handed out; readers get copies.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/client/repositories/alarms"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// ChangeKind classifies a store mutation for subscribers.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeUpdated
	ChangeDeleted
	// ChangeReplaced signals a wholesale replacement (sync merge); the
	// alarm argument is the zero value and subscribers should re-read.
	ChangeReplaced
)

// ChangeFunc is invoked after a mutation, outside the store lock, so
// subscribers may call back into the store.
type ChangeFunc func(kind ChangeKind, a models.Alarm)

// Store is the authoritative alarm list plus its persisted snapshot.
type Store struct {
	mu       sync.Mutex
	alarms   map[string]models.Alarm
	repo     alarms.Repository
	clock    clockx.Clock
	logger   logging.Logger
	onChange ChangeFunc
}

func New(repo alarms.Repository, clock clockx.Clock, l logging.Logger) *Store {
	return &Store{
		alarms: make(map[string]models.Alarm),
		repo:   repo,
		clock:  clock,
		logger: l.With("module", "alarm_store"),
	}
}

// OnChange registers the single mutation subscriber. Must be called during
// wire-up, before concurrent use.
func (s *Store) OnChange(fn ChangeFunc) { s.onChange = fn }

// Load populates the store from the repository. Invalid records were
// already dropped by the repository.
func (s *Store) Load(ctx context.Context) error {
	list, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}

	s.mu.Lock()
	s.alarms = make(map[string]models.Alarm, len(list))
	for _, a := range list {
		s.alarms[a.ID] = a
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "alarm store loaded", "count", len(list))
	return nil
}

// Create validates, normalizes and inserts a new alarm, stamping
// LastModified with the current time.
func (s *Store) Create(ctx context.Context, a models.Alarm) (models.Alarm, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return models.Alarm{}, err
	}
	a.LastModified = s.clock.Now().UTC()

	s.mu.Lock()
	if _, exists := s.alarms[a.ID]; exists {
		s.mu.Unlock()
		return models.Alarm{}, fmt.Errorf("%w: alarm %s already exists", common.ErrValidation, a.ID)
	}
	s.alarms[a.ID] = a
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return models.Alarm{}, err
	}
	s.notify(ChangeCreated, a)
	return a, nil
}

// Update replaces an existing alarm and bumps LastModified.
func (s *Store) Update(ctx context.Context, a models.Alarm) (models.Alarm, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return models.Alarm{}, err
	}
	a.LastModified = s.clock.Now().UTC()

	s.mu.Lock()
	if _, exists := s.alarms[a.ID]; !exists {
		s.mu.Unlock()
		return models.Alarm{}, common.ErrorNotFound
	}
	s.alarms[a.ID] = a
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return models.Alarm{}, err
	}
	s.notify(ChangeUpdated, a)
	return a, nil
}

// SetActive toggles the active flag, bumping LastModified so the change
// propagates through sync.
func (s *Store) SetActive(ctx context.Context, id string, active bool) (models.Alarm, error) {
	s.mu.Lock()
	a, exists := s.alarms[id]
	if !exists {
		s.mu.Unlock()
		return models.Alarm{}, common.ErrorNotFound
	}
	a.Active = active
	a.LastModified = s.clock.Now().UTC()
	s.alarms[id] = a
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return models.Alarm{}, err
	}
	s.notify(ChangeUpdated, a)
	return a, nil
}

// Delete removes an alarm by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	a, exists := s.alarms[id]
	if !exists {
		s.mu.Unlock()
		return common.ErrorNotFound
	}
	delete(s.alarms, id)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ChangeDeleted, a)
	return nil
}

// Get returns a copy of the alarm with the given id.
func (s *Store) Get(id string) (models.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	if !ok {
		return models.Alarm{}, false
	}
	return a.Clone(), true
}

// List returns a copy of all alarms, sorted by id for stable output.
func (s *Store) List() []models.Alarm {
	s.mu.Lock()
	list := make([]models.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		list = append(list, a.Clone())
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ReplaceAll swaps in a merged alarm list from the sync engine. Timestamps
// are kept as-is: merged records carry their own LastModified.
func (s *Store) ReplaceAll(ctx context.Context, list []models.Alarm) error {
	s.mu.Lock()
	s.alarms = make(map[string]models.Alarm, len(list))
	for _, a := range list {
		s.alarms[a.ID] = a
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ChangeReplaced, models.Alarm{})
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	list := make([]models.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	if err := s.repo.SaveAll(ctx, list); err != nil {
		return fmt.Errorf("persist alarms: %w", err)
	}
	return nil
}

func (s *Store) notify(kind ChangeKind, a models.Alarm) {
	if s.onChange != nil {
		s.onChange(kind, a)
	}
}
