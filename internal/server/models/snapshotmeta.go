package models

import "time"

// SnapshotMeta describes the account's latest uploaded snapshot. The
// payload itself lives in object storage under StorageKey; this row only
// carries the metadata needed to locate and verify it.
type SnapshotMeta struct {
	UserID     string
	DeviceID   string
	Checksum   string
	StorageKey string
	AlarmCount int
	CreatedAt  time.Time
}
