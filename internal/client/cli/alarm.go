package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/common"
)

// Add interactively creates an alarm and registers its first occurrence.
func (a *App) Add(ctx context.Context) error {
	timeOfDay, err := GetSimpleText(a.reader, "Time of day (HH:MM)", os.Stdout)
	if err != nil {
		return err
	}
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	daysText, err := GetSimpleText(a.reader, "Days (e.g. mon,wed,fri; empty or 'once' for one-shot; 'daily')", os.Stdout)
	if err != nil {
		return err
	}
	days, err := ParseWeekdays(daysText)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	playlistID, err := GetSimpleText(a.reader, "Playlist id", os.Stdout)
	if err != nil {
		return err
	}
	playlistName, err := GetSimpleText(a.reader, "Playlist name (optional)", os.Stdout)
	if err != nil {
		return err
	}
	volume, err := GetInt(a.reader, "Volume (0-100)", 0, 100, os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	alarm := models.NewAlarm(hour, minute, days, playlistID, playlistName, volume, a.clock.Now())
	created, err := a.store.Create(ctx, alarm)
	if err != nil {
		printlnFn("Could not create alarm:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Created %s at %s (%s)", created.ID, created.TimeOfDay(), FormatWeekdays(created.Days)))
	return nil
}

// List prints all alarms with their next fire time.
func (a *App) List(ctx context.Context) error {
	alarms := a.store.List()
	if len(alarms) == 0 {
		printlnFn("No alarms")
		return nil
	}
	for _, alarm := range alarms {
		state := "off"
		if alarm.Active {
			state = "on"
		}
		next := ""
		if at, ok := a.scheduler.NextFireTime(alarm.ID); ok {
			next = " next " + at.Local().Format("Mon 15:04")
		}
		printlnFn(fmt.Sprintf("%s  %s %-22s vol %3d  [%s]%s  %s",
			alarm.ID, alarm.TimeOfDay(), FormatWeekdays(alarm.Days), alarm.Volume, state, next, alarm.PlaylistName))
	}
	return nil
}

// Remove deletes an alarm and cancels its pending occurrence.
func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.store.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such alarm:", id)
		} else {
			printlnFn("Could not remove alarm:", err.Error())
		}
		return err
	}
	printlnFn("Removed", id)
	return nil
}

// Enable activates an alarm.
func (a *App) Enable(ctx context.Context, id string) error {
	return a.setActive(ctx, id, true)
}

// Disable deactivates an alarm without deleting it.
func (a *App) Disable(ctx context.Context, id string) error {
	return a.setActive(ctx, id, false)
}

func (a *App) setActive(ctx context.Context, id string, active bool) error {
	alarm, err := a.store.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such alarm:", id)
		} else {
			printlnFn("Could not update alarm:", err.Error())
		}
		return err
	}
	if active {
		printlnFn(fmt.Sprintf("Enabled %s (%s)", alarm.ID, alarm.TimeOfDay()))
	} else {
		printlnFn("Disabled", alarm.ID)
	}
	return nil
}
