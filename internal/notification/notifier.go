package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records notification intents in the structured log.
// Actual delivery channels can be swapped in behind the same port
// without touching the coordinator.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify emits one notification intent
func (n *LogNotifier) Notify(ctx context.Context, recipientID, eventKind string, expenseID int64) error {
	n.logger.Info("Notification intent",
		zap.String("recipient", recipientID),
		zap.String("kind", eventKind),
		zap.Int64("expense_id", expenseID),
	)
	return nil
}
