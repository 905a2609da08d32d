package publish

import (
	"github.com/muurk/ookbridge/internal/logging"
	"go.uber.org/zap"
)

// LogPublisher writes every message to the log at info level. It never
// fails.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(topic, payload string) error {
	logging.Info("Message",
		zap.String("topic", topic),
		zap.String("payload", payload),
	)
	return nil
}

// Name implements Named.
func (LogPublisher) Name() string {
	return "log"
}
