package snoozes

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// Repository persists pending snooze entries so they survive a restart.
// FireAt is an absolute UTC instant, which keeps entries unambiguous
// across timezone changes between restarts.
type Repository interface {
	// Load reads all persisted entries, skipping invalid records.
	// Expiry pruning is the snooze manager's job, not the repository's.
	Load(ctx context.Context) ([]models.SnoozeEntry, error)

	// SaveAll replaces the persisted list with the given snapshot.
	SaveAll(ctx context.Context, list []models.SnoozeEntry) error
}
