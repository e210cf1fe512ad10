package conversation

import (
	"context"
	"sync"
)

// MemoryConversationStore is an in-memory ConversationStore for tests and
// single-process mode.
type MemoryConversationStore struct {
	mu     sync.Mutex
	byConv map[string][]Record
}

// NewMemoryConversationStore creates an empty in-memory conversation log.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{byConv: map[string][]Record{}}
}

func (s *MemoryConversationStore) AppendRecord(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.byConv[rec.ConversationID]
	// Timestamps are the sort key; bump forward on collision so ordering
	// within a conversation stays strict.
	if n := len(records); n > 0 && rec.Timestamp <= records[n-1].Timestamp {
		rec.Timestamp = records[n-1].Timestamp + 1
	}
	s.byConv[rec.ConversationID] = append(records, rec)
	return nil
}

func (s *MemoryConversationStore) ListRecords(_ context.Context, conversationID string, limit int32) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.byConv[conversationID]
	if limit > 0 && int32(len(records)) > limit {
		records = records[int32(len(records))-limit:]
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

// MemorySessionStore is an in-memory SessionStore for tests and
// single-process mode.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]UserSession
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]UserSession{}}
}

func (s *MemorySessionStore) GetSession(_ context.Context, userID string) (*UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	out := session
	out.IntentHistory = append([]IntentObservation(nil), session.IntentHistory...)
	return &out, nil
}

func (s *MemorySessionStore) PutSession(_ context.Context, session UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.IntentHistory = append([]IntentObservation(nil), session.IntentHistory...)
	s.sessions[session.UserID] = session
	return nil
}
