// Package devices persists per-account client installations and their
// sync status.
package devices

import (
	"context"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/server/models"
)

// Repository defines operations on the device registry.
type Repository interface {
	// Upsert registers the device or renames an existing one. The
	// last-sync timestamp is left untouched.
	Upsert(ctx context.Context, userID string, device *models.Device) error

	// List returns all devices registered under the account.
	List(ctx context.Context, userID string) ([]models.Device, error)

	// TouchLastSync records a successful sync for the device.
	TouchLastSync(ctx context.Context, userID, deviceID string, at time.Time) error
}
