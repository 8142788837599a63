package client

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/client/cloudsync"
	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// Client is the API contract against the sync server. HTTPClient is the
// concrete implementation; tests substitute fakes.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout()
	Ping(ctx context.Context) error
	PushSnapshot(ctx context.Context, s cloudsync.Snapshot) error
	PullSnapshot(ctx context.Context) (cloudsync.Snapshot, bool, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	RegisterDevice(ctx context.Context, id, name string) error
}
