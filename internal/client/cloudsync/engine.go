package cloudsync

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// Direction selects which half of a sync cycle runs.
type Direction string

const (
	DirectionUpload   Direction = "upload"
	DirectionDownload Direction = "download"
	DirectionBoth     Direction = "both"
)

// Remote is the server-side snapshot store. The HTTP API client
// implements it.
type Remote interface {
	// PushSnapshot uploads the snapshot as the account's latest.
	PushSnapshot(ctx context.Context, s Snapshot) error

	// PullSnapshot downloads the account's latest snapshot. The second
	// return value is false when the account has none yet.
	PullSnapshot(ctx context.Context) (Snapshot, bool, error)

	// AccountID identifies the logged-in account, empty before login.
	AccountID() string
}

// LocalStore is the slice of the alarm store the engine needs.
type LocalStore interface {
	List() []models.Alarm
	ReplaceAll(ctx context.Context, list []models.Alarm) error
}

// Engine replicates the local alarm set through the remote snapshot
// store, standalone or on a timer.
type Engine struct {
	store    LocalStore
	remote   Remote
	deviceID string
	interval time.Duration
	clock    clockx.Clock
	logger   logging.Logger
}

func NewEngine(store LocalStore, remote Remote, deviceID string, interval time.Duration, clock clockx.Clock, l logging.Logger) *Engine {
	return &Engine{
		store:    store,
		remote:   remote,
		deviceID: deviceID,
		interval: interval,
		clock:    clock,
		logger:   l,
	}
}

// Push uploads the current alarm set as a fresh snapshot.
func (e *Engine) Push(ctx context.Context) error {
	alarms := e.store.List()
	snap, err := NewSnapshot(e.remote.AccountID(), e.deviceID, alarms, e.clock.Now())
	if err != nil {
		return err
	}
	if err := e.remote.PushSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	e.logger.Info(ctx, "snapshot uploaded", "alarms", len(alarms), "checksum", snap.Checksum)
	return nil
}

// Pull downloads the latest remote snapshot and merges it into the local
// store. A missing remote snapshot is not an error. A checksum mismatch
// aborts the pull with local state untouched.
func (e *Engine) Pull(ctx context.Context) error {
	snap, ok, err := e.remote.PullSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if !ok {
		e.logger.Info(ctx, "no remote snapshot yet")
		return nil
	}
	if err := snap.Verify(); err != nil {
		return fmt.Errorf("rejecting snapshot: %w", err)
	}

	// One corrupt record must not block the rest of the snapshot.
	incoming := make([]models.Alarm, 0, len(snap.Alarms))
	for _, a := range snap.Alarms {
		if err := a.Validate(); err != nil {
			e.logger.Warn(ctx, "dropping invalid remote alarm", "alarm_id", a.ID, "error", err)
			continue
		}
		incoming = append(incoming, a)
	}

	merged, stats := Merge(e.store.List(), incoming)
	for _, id := range stats.Dropped {
		e.logger.Warn(ctx, "dropped unmergeable alarm", "alarm_id", id)
	}

	// Spent one-shots are garbage collected here rather than at fire time
	// so the deactivation had a chance to replicate first.
	kept := merged[:0]
	for _, a := range merged {
		if a.Dead() {
			e.logger.Info(ctx, "garbage collecting spent alarm", "alarm_id", a.ID)
			continue
		}
		kept = append(kept, a)
	}
	merged = kept
	if err := e.store.ReplaceAll(ctx, merged); err != nil {
		return fmt.Errorf("applying merged alarms: %w", err)
	}
	e.logger.Info(ctx, "snapshot merged",
		"from_device", snap.DeviceID,
		"local_only", stats.LocalOnly, "remote_only", stats.RemoteOnly,
		"local_wins", stats.LocalWins, "remote_wins", stats.RemoteWins)
	return nil
}

// Sync composes Pull and Push depending on direction. For DirectionBoth
// the merged result of the pull is what gets pushed back.
func (e *Engine) Sync(ctx context.Context, d Direction) error {
	switch d {
	case DirectionUpload:
		return e.Push(ctx)
	case DirectionDownload:
		return e.Pull(ctx)
	case DirectionBoth:
		if err := e.Pull(ctx); err != nil {
			return err
		}
		return e.Push(ctx)
	default:
		return fmt.Errorf("%w: unknown sync direction %q", common.ErrValidation, d)
	}
}

// Run performs a full sync on the configured interval until the context
// is cancelled. Transient failures are logged, not fatal.
func (e *Engine) Run(ctx context.Context) {
	if e.interval <= 0 {
		return
	}
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info(ctx, "background sync started", "interval", e.interval)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info(ctx, "background sync stopped")
			return
		case <-ticker.C:
			if err := e.Sync(ctx, DirectionBoth); err != nil {
				e.logger.Warn(ctx, "sync cycle failed", "error", err)
			}
		}
	}
}
