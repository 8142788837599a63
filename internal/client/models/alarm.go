// Package models defines the alarm, snooze and device types shared by the
// store, scheduler and sync engine.
package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/google/uuid"
)

// Alarm is a user-defined recurring or one-shot wake trigger.
//
// Days holds the active weekdays (time.Weekday values, Sunday=0). An empty
// set means the alarm fires once at the next matching time of day and is
// then disabled. LastModified drives conflict resolution during sync and
// must be bumped on every mutation.
type Alarm struct {
	ID            string         `json:"id"`
	Hour          int            `json:"hour"`
	Minute        int            `json:"minute"`
	Days          []time.Weekday `json:"days,omitempty"`
	PlaylistID    string         `json:"playlist_id"`
	PlaylistName  string         `json:"playlist_name,omitempty"`
	Volume        int            `json:"volume"`
	FadeInMinutes int            `json:"fade_in_minutes,omitempty"`
	Active        bool           `json:"active"`
	LastModified  time.Time      `json:"last_modified"`
	DeviceID      string         `json:"device_id,omitempty"`
}

// NewAlarm creates an alarm with a fresh id and LastModified = now (UTC).
func NewAlarm(hour, minute int, days []time.Weekday, playlistID, playlistName string, volume int, now time.Time) Alarm {
	a := Alarm{
		ID:           uuid.NewString(),
		Hour:         hour,
		Minute:       minute,
		Days:         days,
		PlaylistID:   playlistID,
		PlaylistName: playlistName,
		Volume:       volume,
		Active:       true,
		LastModified: now.UTC(),
	}
	a.Normalize()
	return a
}

// Validate checks the mandatory invariants: non-empty id, a valid
// time of day, and weekday values within range. Returns ErrValidation
// wrapped with detail on failure.
func (a *Alarm) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing alarm id", common.ErrValidation)
	}
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", common.ErrValidation, a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", common.ErrValidation, a.Minute)
	}
	for _, d := range a.Days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range", common.ErrValidation, d)
		}
	}
	return nil
}

// Normalize clamps the volume to 0–100, sorts and deduplicates the weekday
// set, and pins timestamps to UTC so serialized forms are byte-stable.
func (a *Alarm) Normalize() {
	if a.Volume < 0 {
		a.Volume = 0
	}
	if a.Volume > 100 {
		a.Volume = 100
	}
	if a.FadeInMinutes < 0 {
		a.FadeInMinutes = 0
	}
	if len(a.Days) > 0 {
		slices.Sort(a.Days)
		a.Days = slices.Compact(a.Days)
	}
	a.LastModified = a.LastModified.UTC()
}

// Dead reports whether the alarm is logically dead: a one-shot that has
// already been disabled. Dead alarms are garbage collected during sync.
func (a *Alarm) Dead() bool {
	return len(a.Days) == 0 && !a.Active
}

// TimeOfDay formats the trigger time as HH:MM for display.
func (a *Alarm) TimeOfDay() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Clone returns a deep copy; the weekday slice is never shared.
func (a Alarm) Clone() Alarm {
	c := a
	c.Days = slices.Clone(a.Days)
	return c
}
