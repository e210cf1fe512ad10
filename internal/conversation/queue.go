package conversation

import (
	"context"
	"encoding/json"
	"fmt"
)

// Queue moves opaque JSON bodies between ingress and the worker with
// at-least-once delivery. Send returns the queue-assigned message id.
type Queue interface {
	Send(ctx context.Context, body string) (string, error)
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// QueueMessage is one received delivery.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

func encodeItem(item QueueItem) (string, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("conversation: failed to encode queue item: %w", err)
	}
	return string(body), nil
}

func decodeItem(body string) (QueueItem, error) {
	var item QueueItem
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		return QueueItem{}, &MalformedPayloadError{Err: err}
	}
	if item.ConversationID == "" || item.UserID == "" {
		return QueueItem{}, &MalformedPayloadError{Err: fmt.Errorf("missing conversation_id or user_id")}
	}
	return item, nil
}
