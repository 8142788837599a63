package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/flagx"
	"github.com/dmitrijs2005/alarmify/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "15m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	DataDir            string          `json:"data_dir"`
	StorageBackend     string          `json:"storage_backend"`
	DeviceName         string          `json:"device_name"`
	SyncInterval       *timex.Duration `json:"sync_interval"`
	WakePreLead        *timex.Duration `json:"wake_pre_lead"`
	WakePollInterval   *timex.Duration `json:"wake_poll_interval"`
	WakeMonitorWindow  *timex.Duration `json:"wake_monitor_window"`
	WakeMaxRetries     *uint64         `json:"wake_max_retries"`
	WakeRetryBackoff   *timex.Duration `json:"wake_retry_backoff"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Fields absent from the JSON keep their current values. Panics on read
// or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.StorageBackend != "" {
		cfg.StorageBackend = jc.StorageBackend
	}
	if jc.DeviceName != "" {
		cfg.DeviceName = jc.DeviceName
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.WakePreLead != nil {
		cfg.WakePreLead = time.Duration(jc.WakePreLead.Duration)
	}
	if jc.WakePollInterval != nil {
		cfg.WakePollInterval = time.Duration(jc.WakePollInterval.Duration)
	}
	if jc.WakeMonitorWindow != nil {
		cfg.WakeMonitorWindow = time.Duration(jc.WakeMonitorWindow.Duration)
	}
	if jc.WakeMaxRetries != nil {
		cfg.WakeMaxRetries = *jc.WakeMaxRetries
	}
	if jc.WakeRetryBackoff != nil {
		cfg.WakeRetryBackoff = time.Duration(jc.WakeRetryBackoff.Duration)
	}
}
