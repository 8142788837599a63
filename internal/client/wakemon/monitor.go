package wakemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/client/notify"
	"github.com/dmitrijs2005/alarmify/internal/client/playback"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/sethvargo/go-retry"
)

// State of a single firing as tracked by the monitor.
type State string

const (
	StateIdle       State = "idle"
	StatePreWake    State = "pre_wake"
	StateFired      State = "fired"
	StateMonitoring State = "monitoring"
	StateResolved   State = "resolved"
	StateExhausted  State = "exhausted"
)

// Config tunes the wake monitor. Zero fields fall back to the defaults.
type Config struct {
	// PreWakeLead is how long before the fire time the device is probed.
	PreWakeLead time.Duration
	// PollInterval is the gap between reachability probes while monitoring.
	PollInterval time.Duration
	// MonitorWindow is how long a firing is watched after playback starts.
	MonitorWindow time.Duration
	// MaxRetries bounds playback attempts beyond the first one.
	MaxRetries uint64
	// RetryBackoff is the constant delay between playback attempts.
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.PreWakeLead <= 0 {
		c.PreWakeLead = time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Minute
	}
	if c.MonitorWindow <= 0 {
		c.MonitorWindow = 30 * time.Minute
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 5 * time.Second
	}
	return c
}

type session struct {
	entryID  string
	alarm    models.Alarm
	state    State
	attempts int
	notified bool
}

// Monitor drives playback for each firing and watches the target device
// afterwards. Every firing goes through pre-wake, fire and a monitoring
// window; a device that stays unresponsive after the bounded retries
// produces exactly one notification. Sessions are discarded once the
// firing settles, so StateOf reports StateIdle for finished firings.
type Monitor struct {
	mu       sync.Mutex
	sessions map[string]*session

	cfg       Config
	player    playback.Player
	directory playback.DeviceDirectory
	notifier  notify.Notifier
	logger    logging.Logger

	wg sync.WaitGroup
}

func New(cfg Config, p playback.Player, dir playback.DeviceDirectory, n notify.Notifier, l logging.Logger) *Monitor {
	return &Monitor{
		sessions:  make(map[string]*session),
		cfg:       cfg.withDefaults(),
		player:    p,
		directory: dir,
		notifier:  n,
		logger:    l,
	}
}

// PreWakeLead reports how long before a firing PreWake should run.
func (m *Monitor) PreWakeLead() time.Duration {
	return m.cfg.PreWakeLead
}

// PreWake probes the target device shortly before the fire time. A device
// that does not answer gets a wake request so it can reconnect before the
// firing; the fire attempt decides whether to alert.
func (m *Monitor) PreWake(ctx context.Context, entryID string, a models.Alarm) {
	m.setState(entryID, a, StatePreWake)

	if a.DeviceID != "" {
		ok, err := m.player.IsReachable(ctx, a.DeviceID)
		if err == nil && ok {
			return
		}
		m.logger.Warn(ctx, "device asleep before firing",
			"device_id", a.DeviceID, "alarm_id", a.ID, "error", err)
	}
	m.wake(ctx, a)
}

// wake sends a low-impact wake request to the preferred playback target:
// the active device when the directory reports one, otherwise the first
// listed device, otherwise the alarm's configured device.
func (m *Monitor) wake(ctx context.Context, a models.Alarm) {
	target := a.DeviceID
	if m.directory != nil {
		devices, err := m.directory.ListDevices(ctx)
		if err != nil {
			m.logger.Warn(ctx, "device listing failed", "alarm_id", a.ID, "error", err)
		} else if len(devices) > 0 {
			target = devices[0].ID
			for _, d := range devices {
				if d.Active {
					target = d.ID
					break
				}
			}
		}
	}
	if target == "" {
		m.logger.Warn(ctx, "no wake target available", "alarm_id", a.ID)
		return
	}
	if err := m.player.Wake(ctx, target); err != nil {
		m.logger.Warn(ctx, "wake request failed", "device_id", target, "error", err)
		return
	}
	m.logger.Info(ctx, "wake request sent", "device_id", target, "alarm_id", a.ID)
}

// Fire starts playback for the firing, retrying up to the configured
// bound, and on success begins the monitoring window in the background.
func (m *Monitor) Fire(ctx context.Context, entryID string, a models.Alarm) error {
	s := m.setState(entryID, a, StateFired)

	if err := m.attemptPlay(ctx, s); err != nil {
		m.exhaust(ctx, s, err)
		return fmt.Errorf("%w: alarm %s", common.ErrRetriesExhausted, a.ID)
	}

	m.setSessionState(s, StateMonitoring)
	m.wg.Add(1)
	go m.watch(ctx, s)
	return nil
}

// StateOf returns the tracked state for a firing, or StateIdle when the
// firing is unknown.
func (m *Monitor) StateOf(entryID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[entryID]; ok {
		return s.state
	}
	return StateIdle
}

// Wait blocks until all monitoring windows have finished. Used on shutdown
// and in tests.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// watch polls the device for the monitoring window, re-starting playback
// when the device drops. The session is dropped once the firing settles,
// whether resolved or exhausted.
func (m *Monitor) watch(ctx context.Context, s *session) {
	defer m.wg.Done()

	deadline := time.NewTimer(m.cfg.MonitorWindow)
	defer deadline.Stop()
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.drop(s)
			return
		case <-deadline.C:
			m.logger.Info(ctx, "monitoring window closed", "alarm_id", s.alarm.ID)
			m.drop(s)
			return
		case <-ticker.C:
			if s.alarm.DeviceID == "" {
				continue
			}
			ok, err := m.player.IsReachable(ctx, s.alarm.DeviceID)
			if err == nil && ok {
				continue
			}
			m.logger.Warn(ctx, "device dropped during monitoring",
				"device_id", s.alarm.DeviceID, "alarm_id", s.alarm.ID, "error", err)
			if err := m.attemptPlay(ctx, s); err != nil {
				m.exhaust(ctx, s, err)
				return
			}
		}
	}
}

// attemptPlay starts playback with a bounded number of constant-backoff
// retries. The retry budget is shared across the whole firing.
func (m *Monitor) attemptPlay(ctx context.Context, s *session) error {
	backoff := retry.WithMaxRetries(m.remainingRetries(s), retry.NewConstant(m.cfg.RetryBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		m.mu.Lock()
		s.attempts++
		attempt := s.attempts
		m.mu.Unlock()

		// Every attempt after the first is a recovery: nudge the device
		// awake before asking it to play again.
		if attempt > 1 {
			m.wake(ctx, s.alarm)
		}

		volume := s.alarm.Volume
		if s.alarm.FadeInMinutes > 0 {
			volume = 0
		}

		err := m.player.Play(ctx, s.alarm.DeviceID, s.alarm.PlaylistID, volume)
		if err != nil {
			m.logger.Warn(ctx, "playback attempt failed",
				"alarm_id", s.alarm.ID, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		m.logger.Info(ctx, "playback started",
			"alarm_id", s.alarm.ID, "playlist_id", s.alarm.PlaylistID, "attempt", attempt)

		if s.alarm.FadeInMinutes > 0 {
			m.wg.Add(1)
			go m.fadeIn(ctx, s)
		}
		return nil
	})
}

const fadeSteps = 10

// fadeIn ramps the volume from zero to the alarm's target in fixed steps
// over FadeInMinutes. Ramp errors are logged and abort the ramp; playback
// keeps running at whatever level was reached.
func (m *Monitor) fadeIn(ctx context.Context, s *session) {
	defer m.wg.Done()

	target := s.alarm.Volume
	step := time.Duration(s.alarm.FadeInMinutes) * time.Minute / fadeSteps
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for i := 1; i <= fadeSteps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			level := target * i / fadeSteps
			if err := m.player.SetVolume(ctx, s.alarm.DeviceID, level); err != nil {
				m.logger.Warn(ctx, "fade-in step failed",
					"alarm_id", s.alarm.ID, "volume", level, "error", err)
				return
			}
		}
	}
}

func (m *Monitor) remainingRetries(s *session) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget := int(m.cfg.MaxRetries) - s.attempts
	if budget < 0 {
		budget = 0
	}
	return uint64(budget)
}

// exhaust raises the single failure notification and drops the session.
func (m *Monitor) exhaust(ctx context.Context, s *session, cause error) {
	m.mu.Lock()
	s.state = StateExhausted
	already := s.notified
	s.notified = true
	m.mu.Unlock()

	m.logger.Error(ctx, "giving up on firing",
		"alarm_id", s.alarm.ID, "device_id", s.alarm.DeviceID, "error", cause)
	if !already {
		m.notifier.Notify(ctx, "Alarm failed",
			fmt.Sprintf("Could not start %q on the wake device after repeated attempts.", s.alarm.PlaylistName))
	}
	m.drop(s)
}

func (m *Monitor) drop(s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.entryID)
}

func (m *Monitor) setState(entryID string, a models.Alarm, st State) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[entryID]
	if !ok {
		s = &session{entryID: entryID, alarm: a}
		m.sessions[entryID] = s
	}
	s.alarm = a
	s.state = st
	return s
}

func (m *Monitor) setSessionState(s *session, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.state = st
}
