// Package cli implements the interactive Alarmify REPL: alarm CRUD,
// snoozing, device listing, account management and manual sync, wired on
// top of the store, scheduler, snooze manager, wake monitor and sync
// engine.
package cli
