package conversation

import (
	"context"
	"time"

	"github.com/chatrelay/chatrelay/pkg/logging"
)

const analyticsPreviewLimit = 100

// AnalyticsEvent is the per-message record emitted after processing, for
// monitoring and insight pipelines.
type AnalyticsEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Intent         string    `json:"intent"`
	Confidence     float64   `json:"confidence"`
	MessageLength  int       `json:"message_length"`
	MessagePreview string    `json:"message_preview"`
}

// NewAnalyticsEvent builds an event, truncating the preview to 100 characters.
func NewAnalyticsEvent(ts time.Time, item QueueItem, intentLabel string, confidence float64) AnalyticsEvent {
	preview := item.Message
	if runes := []rune(preview); len(runes) > analyticsPreviewLimit {
		preview = string(runes[:analyticsPreviewLimit])
	}
	return AnalyticsEvent{
		Timestamp:      ts,
		ConversationID: item.ConversationID,
		UserID:         item.UserID,
		Intent:         intentLabel,
		Confidence:     confidence,
		MessageLength:  len(item.Message),
		MessagePreview: preview,
	}
}

// AnalyticsSink receives analytics events. Emission is fire-and-forget: sinks
// must not fail the pipeline.
type AnalyticsSink interface {
	Emit(ctx context.Context, evt AnalyticsEvent)
}

// LogSink writes analytics events as structured log lines.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a logger-backed analytics sink.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, evt AnalyticsEvent) {
	s.logger.Info("analytics",
		"timestamp", evt.Timestamp.Format(time.RFC3339),
		"conversation_id", evt.ConversationID,
		"user_id", evt.UserID,
		"intent", evt.Intent,
		"confidence", evt.Confidence,
		"message_length", evt.MessageLength,
		"message_preview", evt.MessagePreview,
	)
}
