package playback

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// Player starts and adjusts playback on a target device.
type Player interface {
	// Play starts the playlist on the device at the given volume.
	Play(ctx context.Context, deviceID, playlistID string, volume int) error

	// SetVolume adjusts volume on an already playing device.
	SetVolume(ctx context.Context, deviceID string, volume int) error

	// IsReachable reports whether the device currently responds.
	IsReachable(ctx context.Context, deviceID string) (bool, error)

	// Wake sends a low-impact request to the device so it reconnects
	// to the playback service. It does not start audible playback.
	Wake(ctx context.Context, deviceID string) error
}

// DeviceDirectory lists the playback targets currently visible to the
// account.
type DeviceDirectory interface {
	ListDevices(ctx context.Context) ([]models.PlaybackTarget, error)
}
