package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alarmify/internal/client/cloudsync"
	"github.com/dmitrijs2005/alarmify/internal/common"
)

// Sync runs one manual sync cycle: sync [up|down|both].
func (a *App) Sync(ctx context.Context, direction string) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first")
		return nil
	}

	var d cloudsync.Direction
	switch direction {
	case "up", "upload":
		d = cloudsync.DirectionUpload
	case "down", "download":
		d = cloudsync.DirectionDownload
	case "", "both":
		d = cloudsync.DirectionBoth
	default:
		printlnFn("Usage: sync [up|down|both]")
		return nil
	}

	if err := a.engine.Sync(ctx, d); err != nil {
		switch {
		case errors.Is(err, common.ErrSyncUnavailable):
			printlnFn("Server unavailable, try again later")
		case errors.Is(err, common.ErrorUnauthorized):
			printlnFn("Session expired, log in again")
		case errors.Is(err, common.ErrChecksumMismatch):
			printlnFn("Remote snapshot corrupt, nothing was merged")
		default:
			printlnFn("Sync failed:", err.Error())
		}
		return err
	}

	printlnFn(fmt.Sprintf("Sync (%s) complete, %d alarms", d, len(a.store.List())))
	return nil
}

// Devices lists the playback targets visible right now.
func (a *App) Devices(ctx context.Context) error {
	targets, err := a.directory.ListDevices(ctx)
	if err != nil {
		printlnFn("Could not list devices:", err.Error())
		return err
	}
	if len(targets) == 0 {
		printlnFn("No playback devices found")
		return nil
	}
	for _, d := range targets {
		state := "inactive"
		if d.Active {
			state = "active"
		}
		printlnFn(fmt.Sprintf("%s  %-25s [%s]", d.ID, d.Name, state))
	}
	return nil
}
