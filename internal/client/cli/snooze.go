package cli

import (
	"context"
	"fmt"
	"strconv"
)

const defaultSnoozeMinutes = 10

// Snooze postpones an alarm: snooze <alarm-id> [minutes].
func (a *App) Snooze(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: snooze <alarm-id> [minutes]")
		return nil
	}

	alarm, ok := a.store.Get(args[0])
	if !ok {
		printlnFn("No such alarm:", args[0])
		return nil
	}

	minutes := defaultSnoozeMinutes
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			printlnFn("Minutes must be a number")
			return nil
		}
		minutes = n
	}

	entry, err := a.snoozes.Snooze(ctx, alarm, minutes)
	if err != nil {
		printlnFn("Could not snooze:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Snoozed %s until %s", alarm.ID, entry.FireAt.Local().Format("15:04")))
	return nil
}

// Snoozes lists pending snooze entries.
func (a *App) Snoozes(ctx context.Context) error {
	list := a.snoozes.ListActive(ctx)
	if len(list) == 0 {
		printlnFn("No pending snoozes")
		return nil
	}
	for _, e := range list {
		printlnFn(fmt.Sprintf("%s  alarm %s fires %s (%s)",
			e.ID, e.AlarmID, e.FireAt.Local().Format("15:04"), e.DurationTag))
	}
	return nil
}
