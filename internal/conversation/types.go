package conversation

// Direction marks whether a record captures a user message or a bot reply.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Record is one append-only entry in a conversation log. Records are keyed by
// (conversation_id, timestamp) and never mutated after insert; timestamps are
// unix milliseconds and strictly increase within a conversation.
type Record struct {
	ConversationID string    `json:"conversation_id" dynamodbav:"conversation_id"`
	Timestamp      int64     `json:"timestamp" dynamodbav:"timestamp"`
	UserID         string    `json:"user_id,omitempty" dynamodbav:"user_id,omitempty"`
	Message        string    `json:"message" dynamodbav:"message"`
	Channel        string    `json:"channel,omitempty" dynamodbav:"channel,omitempty"`
	Direction      Direction `json:"direction" dynamodbav:"direction"`
	Intent         string    `json:"intent,omitempty" dynamodbav:"intent,omitempty"`
	Confidence     float64   `json:"confidence,omitempty" dynamodbav:"confidence,omitempty"`
	ExpiresAt      int64     `json:"-" dynamodbav:"expires_at,omitempty"`
}

// QueueItem is the JSON envelope handed from ingress to the worker. It is
// transient: owned by the queue between enqueue and acknowledgment.
type QueueItem struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	Channel        string `json:"channel"`
	Timestamp      int64  `json:"timestamp"`
}

// IntentObservation is one entry of a session's rolling intent history.
type IntentObservation struct {
	Intent    string `json:"intent" dynamodbav:"intent"`
	Timestamp int64  `json:"timestamp" dynamodbav:"timestamp"`
}

// UserSession is the per-user rolling state, one row per user. The row is
// overwritten wholesale on each update; concurrent updaters race and the last
// write wins.
type UserSession struct {
	UserID        string              `json:"user_id" dynamodbav:"user_id"`
	LastIntent    string              `json:"last_intent" dynamodbav:"last_intent"`
	LastActivity  int64               `json:"last_activity" dynamodbav:"last_activity"`
	SessionCount  int                 `json:"session_count" dynamodbav:"session_count"`
	Channel       string              `json:"channel" dynamodbav:"channel"`
	IntentHistory []IntentObservation `json:"intent_history" dynamodbav:"intent_history"`
}

// Ack acknowledges an accepted inbound message.
type Ack struct {
	Status         string `json:"status"`
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	Channel        string `json:"channel"`
}
