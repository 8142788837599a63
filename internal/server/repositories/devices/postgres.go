package devices

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/dbx"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID string, device *models.Device) error {
	query := `
		INSERT INTO devices (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, id)
		DO UPDATE SET name = EXCLUDED.name
	`
	if _, err := r.db.ExecContext(ctx, query, device.ID, userID, device.Name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Device, error) {
	query := `
		SELECT id, name, last_sync
		FROM devices
		WHERE user_id = $1
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Device
	for rows.Next() {
		d := models.Device{UserID: userID}
		var lastSync sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &lastSync); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if lastSync.Valid {
			d.LastSync = lastSync.Time
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) TouchLastSync(ctx context.Context, userID, deviceID string, at time.Time) error {
	query := `
		INSERT INTO devices (id, user_id, last_sync)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, id)
		DO UPDATE SET last_sync = EXCLUDED.last_sync
	`
	if _, err := r.db.ExecContext(ctx, query, deviceID, userID, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
