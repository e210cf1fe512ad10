package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chatrelay/chatrelay/internal/intent"
	"github.com/chatrelay/chatrelay/internal/observability/metrics"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10
)

// Worker is the egress stage: it consumes queued items, classifies them,
// generates a reply, updates the session and persists the outbound record.
// Items are acknowledged once handled, regardless of inner persistence
// failures; delivery is at-least-once, so duplicates after a crash are
// possible and accepted.
type Worker struct {
	queue     Queue
	records   ConversationStore
	sessions  *Updater
	responder *intent.Responder
	analytics AnalyticsSink
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
	now       func() time.Time

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*Worker)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(w *Worker) {
		if count > 0 {
			w.cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(w *Worker) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		w.cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(w *Worker) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		w.cfg.receiveBatchSize = size
	}
}

// WithAnalyticsSink wires the analytics emitter.
func WithAnalyticsSink(sink AnalyticsSink) WorkerOption {
	return func(w *Worker) {
		w.analytics = sink
	}
}

// WithWorkerMetrics wires pipeline metrics for processing outcomes.
func WithWorkerMetrics(m *metrics.PipelineMetrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithWorkerClock injects the time source. Tests use this for determinism.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorker creates the egress worker. The queue may be nil when the worker
// is only driven through ProcessBatch by an external trigger.
func NewWorker(queue Queue, records ConversationStore, sessions *Updater, responder *intent.Responder, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if records == nil {
		panic("conversation: conversation store cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session updater cannot be nil")
	}
	if responder == nil {
		responder = intent.NewResponder()
	}
	if logger == nil {
		logger = logging.Default()
	}

	w := &Worker{
		queue:     queue,
		records:   records,
		sessions:  sessions,
		responder: responder,
		logger:    logger,
		now:       time.Now,
		cfg: workerConfig{
			workers:          defaultWorkerCount,
			receiveWaitSecs:  defaultWaitSeconds,
			receiveBatchSize: defaultBatchSize,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	if w.queue == nil {
		w.logger.Error("worker started without a queue; polling disabled")
		return
	}
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive queue items", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes one delivery and acknowledges it. The delete uses a
// fresh context so shutdown does not strand an already-handled item.
func (w *Worker) handleMessage(ctx context.Context, msg QueueMessage) {
	item, err := decodeItem(msg.Body)
	if err != nil {
		w.logger.Error("skipping malformed queue item", "error", err, "msg_id", msg.ID)
		w.metrics.ObserveSkipped()
		w.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	w.process(ctx, item)
	w.deleteMessage(context.Background(), msg.ReceiptHandle)
}

// ProcessBatch handles a batch of raw queue bodies delivered by an external
// trigger. Each item is independent: a malformed or failing item never aborts
// the rest. Returns the number of items processed.
func (w *Worker) ProcessBatch(ctx context.Context, bodies []string) int {
	processed := 0
	for _, body := range bodies {
		item, err := decodeItem(body)
		if err != nil {
			w.logger.Error("skipping malformed queue item", "error", err)
			w.metrics.ObserveSkipped()
			continue
		}
		w.process(ctx, item)
		processed++
	}
	return processed
}

func (w *Worker) process(ctx context.Context, item QueueItem) {
	result := intent.Classify(item.Message)
	reply := w.responder.Reply(result.Label, item.Message)

	// Best-effort: a session failure must not block the reply.
	if err := w.sessions.Observe(ctx, item.UserID, string(result.Label), item.Channel); err != nil {
		w.logger.Warn("failed to update session",
			"error", err,
			"user_id", item.UserID,
			"conversation_id", item.ConversationID,
		)
	}

	now := w.now().UTC()
	rec := Record{
		ConversationID: item.ConversationID,
		Timestamp:      now.UnixMilli(),
		Message:        reply,
		Channel:        item.Channel,
		Direction:      DirectionOutbound,
		Intent:         string(result.Label),
		Confidence:     result.Confidence,
	}
	if err := w.records.AppendRecord(ctx, rec); err != nil {
		w.logger.Error("failed to store reply",
			"error", err,
			"conversation_id", item.ConversationID,
		)
	}

	if w.analytics != nil {
		w.analytics.Emit(ctx, NewAnalyticsEvent(now, item, string(result.Label), result.Confidence))
	}
	w.metrics.ObserveProcessed(string(result.Label), item.Channel, result.Confidence)

	w.logger.Info("message processed",
		"conversation_id", item.ConversationID,
		"user_id", item.UserID,
		"intent", result.Label,
		"confidence", result.Confidence,
	)
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete queue item", "error", err)
	}
}
