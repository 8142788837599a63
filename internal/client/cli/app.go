package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/client"
	"github.com/dmitrijs2005/alarmify/internal/client/cloudsync"
	"github.com/dmitrijs2005/alarmify/internal/client/config"
	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/client/notify"
	"github.com/dmitrijs2005/alarmify/internal/client/playback"
	alarmrepo "github.com/dmitrijs2005/alarmify/internal/client/repositories/alarms"
	snoozerepo "github.com/dmitrijs2005/alarmify/internal/client/repositories/snoozes"
	"github.com/dmitrijs2005/alarmify/internal/client/scheduler"
	"github.com/dmitrijs2005/alarmify/internal/client/snooze"
	"github.com/dmitrijs2005/alarmify/internal/client/store"
	"github.com/dmitrijs2005/alarmify/internal/client/wakemon"
	"github.com/dmitrijs2005/alarmify/internal/clockx"
	"github.com/dmitrijs2005/alarmify/internal/filex"
	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/google/uuid"
)

const appDirName = "alarmify"

// App wires the client components together and drives the REPL.
type App struct {
	config *config.Config
	logger logging.Logger
	clock  clockx.Clock

	store     *store.Store
	scheduler *scheduler.Scheduler
	snoozes   *snooze.Manager
	monitor   *wakemon.Monitor
	player    playback.Player
	directory playback.DeviceDirectory
	api       *client.HTTPClient
	engine    *cloudsync.Engine

	deviceID string
	userName string
	reader   *bufio.Reader
	db       *sql.DB
}

func NewApp(c *config.Config, l logging.Logger) (*App, error) {
	ctx := context.Background()

	dataDir := c.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = filex.EnsureDataDir(appDirName)
		if err != nil {
			return nil, fmt.Errorf("preparing data directory: %w", err)
		}
	}

	deviceID, err := loadOrCreateDeviceID(filepath.Join(dataDir, "device_id"))
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   c,
		logger:   l,
		clock:    clockx.System{},
		deviceID: deviceID,
		reader:   bufio.NewReader(os.Stdin),
	}

	var (
		alarms  alarmrepo.Repository
		snoozes snoozerepo.Repository
	)
	switch c.StorageBackend {
	case config.StorageFile:
		alarms = alarmrepo.NewFileRepository(filepath.Join(dataDir, "alarms.json"), l)
		snoozes = snoozerepo.NewFileRepository(filepath.Join(dataDir, "snoozes.json"), l)
	default:
		repos, err := client.InitDatabase(ctx, filepath.Join(dataDir, "alarmify.db"))
		if err != nil {
			return nil, err
		}
		alarms, snoozes = repos.Alarms, repos.Snoozes
		a.db = repos.DB
	}

	a.store = store.New(alarms, a.clock, l)

	// Local playback stand-in; a real playback service adapter plugs in
	// through the same interfaces.
	fake := playback.NewFake(models.PlaybackTarget{ID: "local", Name: "This computer", Active: true})
	a.player = fake
	a.directory = fake

	a.monitor = wakemon.New(wakemon.Config{
		PreWakeLead:   c.WakePreLead,
		PollInterval:  c.WakePollInterval,
		MonitorWindow: c.WakeMonitorWindow,
		MaxRetries:    c.WakeMaxRetries,
		RetryBackoff:  c.WakeRetryBackoff,
	}, a.player, a.directory, notify.NewLogNotifier(l), l)

	a.scheduler = scheduler.New(a.clock, l, a.handleFire, scheduler.WithPreFire(a.handlePreFire))
	a.snoozes = snooze.NewManager(snoozes, a.scheduler, a.clock, l)

	a.api = client.NewHTTPClient(c.ServerEndpointAddr)
	a.engine = cloudsync.NewEngine(a.store, a.api, deviceID, c.SyncInterval, a.clock, l)

	a.store.OnChange(a.onStoreChange)
	return a, nil
}

// Run loads persisted state, starts the background loops and hands
// control to the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("loading alarms: %w", err)
	}
	for _, alarm := range a.store.List() {
		if err := a.scheduler.Schedule(ctx, alarm); err != nil {
			a.logger.Warn(ctx, "alarm not scheduled", "alarm_id", alarm.ID, "error", err)
		}
	}
	if err := a.snoozes.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "snooze restore failed", "error", err)
	}

	go a.scheduler.Run(ctx)
	go a.engine.Run(ctx)

	printlnFn("Alarmify CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))

	cancel()
	a.scheduler.CancelAll()
	if a.db != nil {
		a.db.Close()
	}
	return a.api.Close()
}

func (a *App) isLoggedIn() bool {
	return a.api.Authenticated()
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.isLoggedIn() {
		s += "online"
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// onStoreChange keeps the scheduler in step with every store mutation,
// including merges applied by the sync engine.
func (a *App) onStoreChange(kind store.ChangeKind, alarm models.Alarm) {
	ctx := context.Background()
	switch kind {
	case store.ChangeDeleted:
		a.scheduler.Cancel(alarm.ID)
	case store.ChangeReplaced:
		a.scheduler.CancelAll()
		for _, al := range a.store.List() {
			if err := a.scheduler.Schedule(ctx, al); err != nil {
				a.logger.Warn(ctx, "alarm not scheduled", "alarm_id", al.ID, "error", err)
			}
		}
	default:
		if err := a.scheduler.Schedule(ctx, alarm); err != nil {
			a.logger.Warn(ctx, "alarm not scheduled", "alarm_id", alarm.ID, "error", err)
		}
	}
}

// handlePreFire arms the pre-wake probe for the occurrence.
func (a *App) handlePreFire(ev scheduler.FireEvent) {
	delay := ev.At.Sub(a.clock.Now()) - a.monitor.PreWakeLead()
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		a.monitor.PreWake(context.Background(), ev.EntryID, ev.Alarm)
	})
}

// handleFire runs on the scheduler's fire goroutine: it hands the firing
// to the wake monitor and settles one-shot bookkeeping.
func (a *App) handleFire(ctx context.Context, ev scheduler.FireEvent) {
	a.logger.Info(ctx, "alarm fired", "entry_id", ev.EntryID, "playlist", ev.Alarm.PlaylistName)

	if err := a.monitor.Fire(ctx, ev.EntryID, ev.Alarm); err != nil {
		a.logger.Error(ctx, "firing failed", "entry_id", ev.EntryID, "error", err)
	}

	if ev.Snooze {
		a.snoozes.Resolve(ctx, ev.EntryID)
		return
	}
	if ev.OneShot {
		if _, err := a.store.SetActive(ctx, ev.Alarm.ID, false); err != nil {
			a.logger.Warn(ctx, "one-shot not deactivated", "alarm_id", ev.Alarm.ID, "error", err)
		}
	}
}

// loadOrCreateDeviceID returns the installation-stable device id,
// generating and persisting one on first run.
func loadOrCreateDeviceID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id, parseErr := uuid.Parse(string(data)); parseErr == nil {
			return id.String(), nil
		}
	}
	id := uuid.NewString()
	if err := filex.WriteFileAtomic(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}
