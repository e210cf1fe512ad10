package conversation

import "context"

// ConversationStore is the append-only conversation log table.
type ConversationStore interface {
	AppendRecord(ctx context.Context, rec Record) error
	ListRecords(ctx context.Context, conversationID string, limit int32) ([]Record, error)
}

// SessionStore holds one UserSession row per user. GetSession returns
// (nil, nil) when no row exists; PutSession overwrites the full row.
type SessionStore interface {
	GetSession(ctx context.Context, userID string) (*UserSession, error)
	PutSession(ctx context.Context, session UserSession) error
}
