package alarms

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx). The weekday set is stored as a JSON array in a text column.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.Alarm, error) {
	query := `SELECT id, hour, minute, days, playlist_id, playlist_name,
			volume, fade_in_minutes, active, last_modified, device_id
		FROM alarms ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select alarms: %w", err)
	}
	defer rows.Close()

	var result []models.Alarm
	for rows.Next() {
		var (
			a            models.Alarm
			days         string
			lastModified int64
		)
		if err := rows.Scan(&a.ID, &a.Hour, &a.Minute, &days, &a.PlaylistID, &a.PlaylistName,
			&a.Volume, &a.FadeInMinutes, &a.Active, &lastModified, &a.DeviceID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(days), &a.Days); err != nil {
			continue
		}
		a.LastModified = time.Unix(0, lastModified).UTC()
		if err := a.Validate(); err != nil {
			continue
		}
		a.Normalize()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SaveAll(ctx context.Context, list []models.Alarm) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM alarms`); err != nil {
			return fmt.Errorf("failed to clear alarms: %w", err)
		}

		query := `INSERT INTO alarms (id, hour, minute, days, playlist_id, playlist_name,
				volume, fade_in_minutes, active, last_modified, device_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		for _, a := range list {
			days, err := json.Marshal(a.Days)
			if err != nil {
				return fmt.Errorf("marshal days: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query,
				a.ID, a.Hour, a.Minute, string(days), a.PlaylistID, a.PlaylistName,
				a.Volume, a.FadeInMinutes, a.Active, a.LastModified.UnixNano(), a.DeviceID); err != nil {
				return fmt.Errorf("failed to insert alarm: %w", err)
			}
		}
		return nil
	})
}
