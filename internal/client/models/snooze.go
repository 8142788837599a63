package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/google/uuid"
)

// SnoozeEntry is a derived one-shot postponement of a firing alarm.
//
// It carries a snapshot of the playback parameters captured at fire time,
// not a reference to the live alarm, so later edits to the alarm do not
// affect an in-flight snooze. FireAt is an absolute UTC instant; entries
// whose FireAt has passed are pruned on the next load.
type SnoozeEntry struct {
	ID            string    `json:"id"`
	AlarmID       string    `json:"alarm_id"`
	PlaylistID    string    `json:"playlist_id"`
	PlaylistName  string    `json:"playlist_name,omitempty"`
	Volume        int       `json:"volume"`
	FadeInMinutes int       `json:"fade_in_minutes,omitempty"`
	DeviceID      string    `json:"device_id,omitempty"`
	FireAt        time.Time `json:"fire_at"`
	DurationTag   string    `json:"duration_tag,omitempty"`
}

// NewSnoozeEntry snapshots the given alarm into a snooze entry firing at
// fireAt. The synthetic id is independent of the alarm id so the original
// recurring schedule is unaffected.
func NewSnoozeEntry(a Alarm, fireAt time.Time, tag string) SnoozeEntry {
	return SnoozeEntry{
		ID:            uuid.NewString(),
		AlarmID:       a.ID,
		PlaylistID:    a.PlaylistID,
		PlaylistName:  a.PlaylistName,
		Volume:        a.Volume,
		FadeInMinutes: a.FadeInMinutes,
		DeviceID:      a.DeviceID,
		FireAt:        fireAt.UTC(),
		DurationTag:   tag,
	}
}

// Validate checks the mandatory invariants of a persisted snooze record.
func (s *SnoozeEntry) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing snooze id", common.ErrValidation)
	}
	if s.FireAt.IsZero() {
		return fmt.Errorf("%w: missing fire_at", common.ErrValidation)
	}
	return nil
}

// Alarm reconstructs a one-shot alarm view of the snapshot, used when the
// snooze fires and playback parameters are needed.
func (s *SnoozeEntry) Alarm() Alarm {
	return Alarm{
		ID:            s.AlarmID,
		PlaylistID:    s.PlaylistID,
		PlaylistName:  s.PlaylistName,
		Volume:        s.Volume,
		FadeInMinutes: s.FadeInMinutes,
		DeviceID:      s.DeviceID,
		Active:        true,
	}
}
