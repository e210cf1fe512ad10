package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/chatrelay/chatrelay/internal/channel"
	"github.com/chatrelay/chatrelay/internal/observability/metrics"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

// Router is the ingress stage: it normalizes a channel payload, derives the
// conversation id, logs the inbound message and hands the work item to the
// queue. Only the enqueue is fatal to the request; the inbound log write is
// best-effort.
type Router struct {
	queue   Queue
	records ConversationStore
	metrics *metrics.PipelineMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// RouterOption customizes router behavior.
type RouterOption func(*Router)

// WithRouterClock injects the time source. Tests use this for determinism.
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRouterMetrics wires pipeline metrics for ingress outcomes.
func WithRouterMetrics(m *metrics.PipelineMetrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter creates the ingress router.
func NewRouter(queue Queue, records ConversationStore, logger *logging.Logger, opts ...RouterOption) *Router {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Router{
		queue:   queue,
		records: records,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accept routes one inbound payload. The channel tag is read from the
// payload's "channel" field, defaulting to web. Returns ErrNoMessage when no
// text could be extracted and a DependencyError when the enqueue fails.
func (r *Router) Accept(ctx context.Context, payload []byte) (*Ack, error) {
	tag := channelTag(payload)
	norm := channel.Normalize(channel.Resolve(tag), payload)
	if norm.Text == "" {
		r.metrics.ObserveIngress(tag, "rejected")
		return nil, ErrNoMessage
	}

	now := r.now().UTC()
	conversationID := ConversationID(norm.UserID, tag, now)

	// Best-effort: a failed inbound log must not reject the message.
	if r.records != nil {
		rec := Record{
			ConversationID: conversationID,
			Timestamp:      now.UnixMilli(),
			UserID:         norm.UserID,
			Message:        norm.Text,
			Channel:        tag,
			Direction:      DirectionInbound,
		}
		if err := r.records.AppendRecord(ctx, rec); err != nil {
			r.logger.Warn("failed to log inbound message",
				"error", err,
				"conversation_id", conversationID,
				"channel", tag,
			)
		}
	}

	body, err := encodeItem(QueueItem{
		ConversationID: conversationID,
		UserID:         norm.UserID,
		Message:        norm.Text,
		Channel:        tag,
		Timestamp:      now.Unix(),
	})
	if err != nil {
		r.metrics.ObserveIngress(tag, "failed")
		return nil, &DependencyError{Op: "encode queue item", Err: err}
	}

	messageID, err := r.queue.Send(ctx, body)
	if err != nil {
		r.metrics.ObserveIngress(tag, "failed")
		return nil, &DependencyError{Op: "enqueue", Err: err}
	}

	r.metrics.ObserveIngress(tag, "queued")
	r.logger.Info("message queued",
		"conversation_id", conversationID,
		"message_id", messageID,
		"channel", tag,
		"user_id", norm.UserID,
	)

	return &Ack{
		Status:         "queued",
		MessageID:      messageID,
		ConversationID: conversationID,
		Channel:        tag,
	}, nil
}

// channelTag reads the channel field from the payload, defaulting to web.
func channelTag(payload []byte) string {
	var envelope struct {
		Channel string `json:"channel"`
	}
	_ = json.Unmarshal(payload, &envelope)
	if tag := strings.TrimSpace(envelope.Channel); tag != "" {
		return tag
	}
	return string(channel.Web)
}
