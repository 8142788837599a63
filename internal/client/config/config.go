package config

import "time"

// Storage backend selectors for local persistence.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config holds runtime settings for the Alarmify CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the sync server.
	ServerEndpointAddr string
	// DataDir is where local state lives. Empty means a per-user
	// directory resolved at startup.
	DataDir string
	// StorageBackend selects the alarm/snooze persistence: file or sqlite.
	StorageBackend string
	// DeviceName is the human-readable name reported on sync.
	DeviceName string
	// SyncInterval drives background sync; zero disables the timer.
	SyncInterval time.Duration

	// Wake monitor tuning.
	WakePreLead       time.Duration
	WakePollInterval  time.Duration
	WakeMonitorWindow time.Duration
	WakeMaxRetries    uint64
	WakeRetryBackoff  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.StorageBackend = StorageSQLite
	c.DeviceName = "alarmify"
	c.SyncInterval = 15 * time.Minute
	c.WakePreLead = time.Minute
	c.WakePollInterval = 2 * time.Minute
	c.WakeMonitorWindow = 30 * time.Minute
	c.WakeMaxRetries = 3
	c.WakeRetryBackoff = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
