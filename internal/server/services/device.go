package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/repomanager"
)

// DeviceService tracks the devices a user syncs from.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDeviceService(db *sql.DB, repomanager repomanager.RepositoryManager) *DeviceService {
	return &DeviceService{db: db, repomanager: repomanager}
}

// Register creates the device record or renames an existing one.
func (s *DeviceService) Register(ctx context.Context, userID, deviceID, name string) (*models.Device, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id required", common.ErrValidation)
	}
	device := &models.Device{ID: deviceID, UserID: userID, Name: name}
	if err := s.repomanager.Devices(s.db).Upsert(ctx, userID, device); err != nil {
		return nil, fmt.Errorf("error registering device: %w", err)
	}
	return device, nil
}

// List returns all devices known for the user.
func (s *DeviceService) List(ctx context.Context, userID string) ([]models.Device, error) {
	devices, err := s.repomanager.Devices(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	return devices, nil
}
