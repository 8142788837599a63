package snoozes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/dbx"
)

// SQLiteRepository implements Repository over the client database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.SnoozeEntry, error) {
	query := `SELECT id, alarm_id, playlist_id, playlist_name, volume,
			fade_in_minutes, device_id, fire_at, duration_tag
		FROM snoozes ORDER BY fire_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select snoozes: %w", err)
	}
	defer rows.Close()

	var result []models.SnoozeEntry
	for rows.Next() {
		var (
			s      models.SnoozeEntry
			fireAt int64
		)
		if err := rows.Scan(&s.ID, &s.AlarmID, &s.PlaylistID, &s.PlaylistName, &s.Volume,
			&s.FadeInMinutes, &s.DeviceID, &fireAt, &s.DurationTag); err != nil {
			return nil, err
		}
		s.FireAt = time.Unix(0, fireAt).UTC()
		if err := s.Validate(); err != nil {
			continue
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SaveAll(ctx context.Context, list []models.SnoozeEntry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snoozes`); err != nil {
			return fmt.Errorf("failed to clear snoozes: %w", err)
		}

		query := `INSERT INTO snoozes (id, alarm_id, playlist_id, playlist_name, volume,
				fade_in_minutes, device_id, fire_at, duration_tag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		for _, s := range list {
			if _, err := tx.ExecContext(ctx, query,
				s.ID, s.AlarmID, s.PlaylistID, s.PlaylistName, s.Volume,
				s.FadeInMinutes, s.DeviceID, s.FireAt.UnixNano(), s.DurationTag); err != nil {
				return fmt.Errorf("failed to insert snooze: %w", err)
			}
		}
		return nil
	})
}
