package alarms

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

// FileRepository stores the alarm list as a JSON array in a single file,
// rewritten atomically on every save.
type FileRepository struct {
	path   string
	logger logging.Logger
}

func NewFileRepository(path string, l logging.Logger) *FileRepository {
	return &FileRepository{path: path, logger: l.With("module", "alarm_file_repo")}
}

func (r *FileRepository) Load(ctx context.Context) ([]models.Alarm, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	// Decode element by element so one corrupt record does not discard
	// the rest of the list.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	result := make([]models.Alarm, 0, len(raw))
	for _, item := range raw {
		var a models.Alarm
		if err := json.Unmarshal(item, &a); err != nil {
			r.logger.Warn(ctx, "skipping unreadable alarm record", "error", err)
			continue
		}
		if err := a.Validate(); err != nil {
			r.logger.Warn(ctx, "skipping invalid alarm record", "alarm_id", a.ID, "error", err)
			continue
		}
		a.Normalize()
		result = append(result, a)
	}
	return result, nil
}

func (r *FileRepository) SaveAll(ctx context.Context, list []models.Alarm) error {
	if list == nil {
		list = []models.Alarm{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alarms: %w", err)
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("save alarms: %w", err)
	}
	return nil
}
