package wakemon

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/client/playback"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
	last  string
}

func (n *countingNotifier) Notify(ctx context.Context, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.last = message
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func fastConfig() Config {
	return Config{
		PreWakeLead:   time.Minute,
		PollInterval:  5 * time.Millisecond,
		MonitorWindow: 40 * time.Millisecond,
		MaxRetries:    3,
		RetryBackoff:  time.Millisecond,
	}
}

func wakeAlarm() models.Alarm {
	now := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	a := models.NewAlarm(7, 0, []time.Weekday{time.Monday}, "p1", "Morning", 80, now)
	a.DeviceID = "dev1"
	return a
}

func newTestMonitor(t *testing.T, cfg Config) (*Monitor, *playback.Fake, *countingNotifier) {
	t.Helper()
	fake := playback.NewFake(models.PlaybackTarget{ID: "dev1", Name: "Bedroom"})
	n := &countingNotifier{}
	return New(cfg, fake, fake, n, testLogger()), fake, n
}

func TestMonitor_HappyPath(t *testing.T) {
	m, fake, n := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	m.PreWake(context.Background(), a.ID, a)
	assert.Equal(t, StatePreWake, m.StateOf(a.ID))

	require.NoError(t, m.Fire(context.Background(), a.ID, a))
	assert.Equal(t, StateMonitoring, m.StateOf(a.ID))

	m.Wait()
	assert.Equal(t, StateIdle, m.StateOf(a.ID), "session dropped once the window closes")
	require.Len(t, fake.Plays(), 1)
	assert.Equal(t, playback.PlayCall{DeviceID: "dev1", PlaylistID: "p1", Volume: 80}, fake.Plays()[0])
	assert.Empty(t, fake.Wakes(), "reachable device never needs a wake request")
	assert.Equal(t, 0, n.count())
}

func TestMonitor_RetriesThenSucceeds(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryBackoff = 20 * time.Millisecond
	m, fake, n := newTestMonitor(t, cfg)
	a := wakeAlarm()

	// Device comes up while retries are still in budget: attempts run at
	// roughly 0, 20, 40 and 60ms, the flip happens at 30ms.
	fake.SetReachable("dev1", false)
	go func() {
		time.Sleep(30 * time.Millisecond)
		fake.SetReachable("dev1", true)
	}()

	require.NoError(t, m.Fire(context.Background(), a.ID, a))
	m.Wait()

	assert.Equal(t, StateIdle, m.StateOf(a.ID))
	assert.Equal(t, 0, n.count())
	require.Len(t, fake.Plays(), 1)
	assert.NotEmpty(t, fake.Wakes(), "recovery attempts re-issue the wake request")
}

func TestMonitor_ExhaustionNotifiesExactlyOnce(t *testing.T) {
	m, fake, n := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	fake.SetReachable("dev1", false)

	err := m.Fire(context.Background(), a.ID, a)
	require.ErrorIs(t, err, common.ErrRetriesExhausted)
	m.Wait()

	assert.Equal(t, StateIdle, m.StateOf(a.ID), "exhausted session is dropped")
	assert.Equal(t, 1, n.count())
	assert.Empty(t, fake.Plays())
}

func TestMonitor_DeviceDropsDuringMonitoring(t *testing.T) {
	cfg := fastConfig()
	cfg.MonitorWindow = 150 * time.Millisecond
	cfg.RetryBackoff = 20 * time.Millisecond
	m, fake, _ := newTestMonitor(t, cfg)
	a := wakeAlarm()

	require.NoError(t, m.Fire(context.Background(), a.ID, a))

	// The device drops mid-window but comes back before the restart
	// retries run out.
	time.Sleep(10 * time.Millisecond)
	fake.SetReachable("dev1", false)
	time.Sleep(10 * time.Millisecond)
	fake.SetReachable("dev1", true)

	m.Wait()
	assert.Equal(t, StateIdle, m.StateOf(a.ID))
	assert.GreaterOrEqual(t, len(fake.Plays()), 1)
}

func TestMonitor_DropDuringMonitoringExhaustsBudget(t *testing.T) {
	cfg := fastConfig()
	cfg.MonitorWindow = 200 * time.Millisecond
	m, fake, n := newTestMonitor(t, cfg)
	a := wakeAlarm()

	require.NoError(t, m.Fire(context.Background(), a.ID, a))
	fake.SetReachable("dev1", false)

	m.Wait()
	assert.Equal(t, StateIdle, m.StateOf(a.ID))
	assert.Equal(t, 1, n.count(), "exactly one notification per firing")
}

func TestMonitor_RetryBudgetIsShared(t *testing.T) {
	// The first firing attempt uses part of the budget; the monitoring
	// recovery only gets what is left. With the device permanently down
	// total attempts never exceed 1 + MaxRetries.
	cfg := fastConfig()
	cfg.MaxRetries = 2
	m, fake, _ := newTestMonitor(t, cfg)
	a := wakeAlarm()

	fake.SetReachable("dev1", false)
	err := m.Fire(context.Background(), a.ID, a)
	require.ErrorIs(t, err, common.ErrRetriesExhausted)
	m.Wait()

	assert.Equal(t, 3, fake.PlayAttempts())
}

func TestMonitor_PreWakeReachableDeviceSkipsWake(t *testing.T) {
	m, fake, n := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	m.PreWake(context.Background(), a.ID, a)
	assert.Equal(t, StatePreWake, m.StateOf(a.ID))
	assert.Empty(t, fake.Wakes())
	assert.Equal(t, 0, n.count())
}

func TestMonitor_PreWakeWakesSleepingDevice(t *testing.T) {
	m, fake, n := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	fake.SetReachable("dev1", false)
	m.PreWake(context.Background(), a.ID, a)

	assert.Equal(t, []string{"dev1"}, fake.Wakes())
	assert.Equal(t, 0, n.count(), "a sleeping device is not worth an alert yet")
}

func TestMonitor_PreWakeWithoutDeviceWakesPreferredTarget(t *testing.T) {
	fake := playback.NewFake(
		models.PlaybackTarget{ID: "dev1", Name: "Bedroom"},
		models.PlaybackTarget{ID: "dev2", Name: "Kitchen", Active: true},
	)
	n := &countingNotifier{}
	m := New(fastConfig(), fake, fake, n, testLogger())
	a := wakeAlarm()
	a.DeviceID = ""

	m.PreWake(context.Background(), a.ID, a)

	assert.Equal(t, []string{"dev2"}, fake.Wakes(), "active target wins over list order")
	assert.Equal(t, 0, n.count())
}

func TestMonitor_RetryReissuesWake(t *testing.T) {
	m, fake, _ := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	fake.SetReachable("dev1", false)
	err := m.Fire(context.Background(), a.ID, a)
	require.ErrorIs(t, err, common.ErrRetriesExhausted)
	m.Wait()

	// Four attempts in total; every one after the first sends a wake.
	assert.Equal(t, 4, fake.PlayAttempts())
	assert.Equal(t, []string{"dev1", "dev1", "dev1"}, fake.Wakes())
}

func TestMonitor_SessionsDoNotAccumulate(t *testing.T) {
	m, _, _ := newTestMonitor(t, fastConfig())
	a := wakeAlarm()

	for _, id := range []string{"f1", "f2", "f3"} {
		require.NoError(t, m.Fire(context.Background(), id, a))
	}
	m.Wait()

	m.mu.Lock()
	remaining := len(m.sessions)
	m.mu.Unlock()
	assert.Equal(t, 0, remaining)
}

func TestMonitor_UnknownFiringIsIdle(t *testing.T) {
	m, _, _ := newTestMonitor(t, fastConfig())
	assert.Equal(t, StateIdle, m.StateOf("nope"))
}

func TestMonitor_FadeInStartsSilent(t *testing.T) {
	m, fake, _ := newTestMonitor(t, fastConfig())
	a := wakeAlarm()
	a.FadeInMinutes = 5

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Fire(ctx, a.ID, a))

	require.Len(t, fake.Plays(), 1)
	assert.Equal(t, 0, fake.Plays()[0].Volume)

	// stop the ramp and the monitoring window before waiting
	cancel()
	m.Wait()
}
