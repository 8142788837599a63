package cloudsync

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

type fakeStore struct {
	alarms   []models.Alarm
	replaced int
}

func (s *fakeStore) List() []models.Alarm {
	out := make([]models.Alarm, len(s.alarms))
	for i, a := range s.alarms {
		out[i] = a.Clone()
	}
	return out
}

func (s *fakeStore) ReplaceAll(ctx context.Context, list []models.Alarm) error {
	s.alarms = list
	s.replaced++
	return nil
}

type fakeRemote struct {
	stored    *Snapshot
	pushes    int
	pulls     int
	failPush  error
	failPull  error
	corrupted bool
}

func (r *fakeRemote) AccountID() string { return "acct-1" }

func (r *fakeRemote) PushSnapshot(ctx context.Context, s Snapshot) error {
	r.pushes++
	if r.failPush != nil {
		return r.failPush
	}
	cp := s
	r.stored = &cp
	return nil
}

func (r *fakeRemote) PullSnapshot(ctx context.Context) (Snapshot, bool, error) {
	r.pulls++
	if r.failPull != nil {
		return Snapshot{}, false, r.failPull
	}
	if r.stored == nil {
		return Snapshot{}, false, nil
	}
	s := *r.stored
	if r.corrupted {
		s.Checksum = "bogus"
	}
	return s, true, nil
}

var engineNow = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

func newTestEngine(store *fakeStore, remote *fakeRemote) *Engine {
	return NewEngine(store, remote, "dev-local", 0, clockx.NewFake(engineNow), testLogger())
}

func TestEngine_PushUploadsChecksummedSnapshot(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	remote := &fakeRemote{}
	e := newTestEngine(store, remote)

	require.NoError(t, e.Push(context.Background()))
	require.NotNil(t, remote.stored)
	assert.Equal(t, "acct-1", remote.stored.AccountID)
	assert.Equal(t, "dev-local", remote.stored.DeviceID)
	assert.Equal(t, engineNow, remote.stored.CreatedAt)
	assert.NoError(t, remote.stored.Verify())
}

func TestEngine_PullMergesRemote(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	remoteAlarm := alarmAt("a", 200)
	remoteAlarm.Volume = 50
	snap, err := NewSnapshot("acct-1", "dev-other", []models.Alarm{remoteAlarm, alarmAt("b", 100)}, engineNow)
	require.NoError(t, err)
	remote := &fakeRemote{stored: &snap}
	e := newTestEngine(store, remote)

	require.NoError(t, e.Pull(context.Background()))
	require.Len(t, store.alarms, 2)
	assert.Equal(t, 50, store.alarms[0].Volume, "newer remote record won")
	assert.Equal(t, "b", store.alarms[1].ID)
}

func TestEngine_PullWithoutRemoteSnapshotIsNoop(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	e := newTestEngine(store, &fakeRemote{})

	require.NoError(t, e.Pull(context.Background()))
	assert.Equal(t, 0, store.replaced)
}

func TestEngine_ChecksumMismatchLeavesLocalUntouched(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	snap, err := NewSnapshot("acct-1", "dev-other", []models.Alarm{alarmAt("b", 100)}, engineNow)
	require.NoError(t, err)
	remote := &fakeRemote{stored: &snap, corrupted: true}
	e := newTestEngine(store, remote)

	before := store.List()
	err = e.Pull(context.Background())
	require.ErrorIs(t, err, common.ErrChecksumMismatch)
	assert.Equal(t, before, store.List())
	assert.Equal(t, 0, store.replaced)
}

func TestEngine_PullDropsInvalidRecordsIndividually(t *testing.T) {
	store := &fakeStore{}
	bad := alarmAt("bad", 100)
	bad.Hour = 99
	snap, err := NewSnapshot("acct-1", "dev-other", []models.Alarm{bad, alarmAt("good", 100)}, engineNow)
	require.NoError(t, err)
	e := newTestEngine(store, &fakeRemote{stored: &snap})

	require.NoError(t, e.Pull(context.Background()))
	require.Len(t, store.alarms, 1)
	assert.Equal(t, "good", store.alarms[0].ID)
}

func TestEngine_UnreachableRemoteFailsLoudly(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	remote := &fakeRemote{
		failPush: common.ErrSyncUnavailable,
		failPull: common.ErrSyncUnavailable,
	}
	e := newTestEngine(store, remote)

	require.ErrorIs(t, e.Push(context.Background()), common.ErrSyncUnavailable)
	require.ErrorIs(t, e.Pull(context.Background()), common.ErrSyncUnavailable)
	assert.Equal(t, 0, store.replaced)
}

func TestEngine_SyncDirections(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	remote := &fakeRemote{}
	e := newTestEngine(store, remote)

	require.NoError(t, e.Sync(context.Background(), DirectionUpload))
	assert.Equal(t, 1, remote.pushes)
	assert.Equal(t, 0, remote.pulls)

	require.NoError(t, e.Sync(context.Background(), DirectionDownload))
	assert.Equal(t, 1, remote.pulls)

	require.NoError(t, e.Sync(context.Background(), DirectionBoth))
	assert.Equal(t, 2, remote.pushes)
	assert.Equal(t, 2, remote.pulls)

	err := e.Sync(context.Background(), Direction("sideways"))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestEngine_BothPushesMergedResult(t *testing.T) {
	store := &fakeStore{alarms: []models.Alarm{alarmAt("a", 100)}}
	snap, err := NewSnapshot("acct-1", "dev-other", []models.Alarm{alarmAt("b", 100)}, engineNow)
	require.NoError(t, err)
	remote := &fakeRemote{stored: &snap}
	e := newTestEngine(store, remote)

	require.NoError(t, e.Sync(context.Background(), DirectionBoth))
	require.NotNil(t, remote.stored)
	require.Len(t, remote.stored.Alarms, 2, "upload contains the merged set")
}

func TestEngine_PullGarbageCollectsSpentAlarms(t *testing.T) {
	spent := alarmAt("dead", 100)
	spent.Days = nil
	spent.Active = false

	store := &fakeStore{alarms: []models.Alarm{alarmAt("live", 100), spent}}
	remote := &fakeRemote{}
	e := newTestEngine(store, remote)

	require.NoError(t, e.Push(context.Background()))
	require.NoError(t, e.Pull(context.Background()))

	require.Len(t, store.alarms, 1)
	assert.Equal(t, "live", store.alarms[0].ID)
}
