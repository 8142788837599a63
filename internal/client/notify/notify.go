package notify

import (
	"context"

	"github.com/dmitrijs2005/alarmify/internal/logging"
)

// Notifier delivers user-facing alerts raised by background components,
// for example when a wake device stays unreachable.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// LogNotifier writes alerts to the structured log. Desktop or push
// delivery would wrap this.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(ctx context.Context, title, message string) {
	n.logger.Warn(ctx, "notification", "title", title, "message", message)
}
