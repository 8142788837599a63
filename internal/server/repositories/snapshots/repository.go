package snapshots

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/server/models"
)

// Repository stores snapshot metadata. The snapshot payload itself lives in
// object storage under StorageKey; only the latest snapshot per user is kept.
type Repository interface {
	// Upsert replaces the user's snapshot metadata with the given record.
	Upsert(ctx context.Context, meta *models.SnapshotMeta) error
	// Get returns the user's latest snapshot metadata, or ErrorNotFound if
	// the user has never pushed a snapshot.
	Get(ctx context.Context, userID string) (*models.SnapshotMeta, error)
}
