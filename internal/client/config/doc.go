// Package config loads runtime configuration for the Alarmify CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the sync server
//	-d string   data directory for local persistence
//	-s string   storage backend: file or sqlite
//	-i int      background sync interval (seconds, 0 disables)
//	-n string   human-readable device name
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30m" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "storage_backend": "sqlite",
//	  "sync_interval": "15m",
//	  "wake_poll_interval": "2m",
//	  "wake_monitor_window": "30m"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
