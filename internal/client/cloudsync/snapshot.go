// Package cloudsync replicates the alarm set between devices through the
// sync server. A device uploads a checksummed snapshot of its alarms and
// merges the server copy back in, resolving conflicts deterministically.
package cloudsync

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/snapshot"
)

// Snapshot is the unit of exchange with the sync server: the full alarm
// set of one device plus an integrity checksum over it.
type Snapshot struct {
	AccountID string         `json:"account_id"`
	DeviceID  string         `json:"device_id"`
	CreatedAt time.Time      `json:"created_at"`
	Alarms    []models.Alarm `json:"alarms"`
	Checksum  string         `json:"checksum"`
}

// NewSnapshot builds a snapshot of the given alarms with a freshly
// computed checksum.
func NewSnapshot(accountID, deviceID string, alarms []models.Alarm, now time.Time) (Snapshot, error) {
	sum, err := snapshot.Checksum(alarms)
	if err != nil {
		return Snapshot{}, fmt.Errorf("computing snapshot checksum: %w", err)
	}
	return Snapshot{
		AccountID: accountID,
		DeviceID:  deviceID,
		CreatedAt: now.UTC(),
		Alarms:    alarms,
		Checksum:  sum,
	}, nil
}

// Verify recomputes the checksum over the carried alarms and compares it
// with the recorded one.
func (s Snapshot) Verify() error {
	sum, err := snapshot.Checksum(s.Alarms)
	if err != nil {
		return fmt.Errorf("recomputing snapshot checksum: %w", err)
	}
	if sum != s.Checksum {
		return fmt.Errorf("%w: want %s, have %s", common.ErrChecksumMismatch, s.Checksum, sum)
	}
	return nil
}
