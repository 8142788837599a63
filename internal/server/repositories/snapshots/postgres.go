package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/dbx"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, meta *models.SnapshotMeta) error {
	query := `
		INSERT INTO snapshots (user_id, device_id, checksum, storage_key, alarm_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			device_id = EXCLUDED.device_id,
			checksum = EXCLUDED.checksum,
			storage_key = EXCLUDED.storage_key,
			alarm_count = EXCLUDED.alarm_count,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		meta.UserID, meta.DeviceID, meta.Checksum, meta.StorageKey, meta.AlarmCount, meta.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.SnapshotMeta, error) {
	query := `
		SELECT device_id, checksum, storage_key, alarm_count, created_at
		FROM snapshots
		WHERE user_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, userID)

	meta := &models.SnapshotMeta{UserID: userID}
	err := row.Scan(&meta.DeviceID, &meta.Checksum, &meta.StorageKey, &meta.AlarmCount, &meta.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return meta, nil
}
