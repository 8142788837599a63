package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the sync server (default from Config)
//	-d string   data directory for local persistence
//	-s string   storage backend: file or sqlite
//	-i int      background sync interval in seconds, 0 disables
//	-n string   device name reported on sync
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the sync server")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for local persistence")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend: file or sqlite")
	fs.StringVar(&cfg.DeviceName, "n", cfg.DeviceName, "device name reported on sync")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "background sync interval (in seconds, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
