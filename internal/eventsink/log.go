// Package eventsink delivers domain events produced by the use cases to
// logs, Redis streams, or an in-memory recorder.
package eventsink

import (
	"context"

	"github.com/alexanderramin/strategos/internal/domain"
	"go.uber.org/zap"
)

// LogSink writes each event as one structured log line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Publish(_ context.Context, event domain.Event) error {
	s.logger.Info("domain_event",
		zap.String("type", string(event.Type)),
		zap.String("aggregate_id", event.AggregateID),
		zap.String("organization_id", event.OrganizationID),
		zap.String("branch_id", event.BranchID),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Any("payload", event.Payload),
	)
	return nil
}
