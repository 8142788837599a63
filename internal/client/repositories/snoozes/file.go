package snoozes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/filex"
	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// FileRepository stores snooze entries as a JSON array in a single file,
// rewritten atomically on every save.
type FileRepository struct {
	path   string
	logger logging.Logger
}

func NewFileRepository(path string, l logging.Logger) *FileRepository {
	return &FileRepository{path: path, logger: l.With("module", "snooze_file_repo")}
}

func (r *FileRepository) Load(ctx context.Context) ([]models.SnoozeEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	result := make([]models.SnoozeEntry, 0, len(raw))
	for _, item := range raw {
		var s models.SnoozeEntry
		if err := json.Unmarshal(item, &s); err != nil {
			r.logger.Warn(ctx, "skipping unreadable snooze record", "error", err)
			continue
		}
		if err := s.Validate(); err != nil {
			r.logger.Warn(ctx, "skipping invalid snooze record", "snooze_id", s.ID, "error", err)
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (r *FileRepository) SaveAll(ctx context.Context, list []models.SnoozeEntry) error {
	if list == nil {
		list = []models.SnoozeEntry{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snoozes: %w", err)
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("save snoozes: %w", err)
	}
	return nil
}
