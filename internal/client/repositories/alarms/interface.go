package alarms

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// Repository persists the full alarm list. The in-memory store is the
// authority; every mutation is written through as a complete snapshot,
// which keeps the on-disk format simple and auditable.
//
// Load must tolerate unknown fields (forward compatibility). Individual
// records missing the mandatory id/time fields are dropped, not fatal.
type Repository interface {
	// Load reads the persisted alarm list, skipping invalid records.
	Load(ctx context.Context) ([]models.Alarm, error)

	// SaveAll replaces the persisted list with the given snapshot.
	SaveAll(ctx context.Context, list []models.Alarm) error
}
