package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/pkg/logging"
)

type failingSessionStore struct {
	getErr error
	putErr error
	put    []UserSession
}

func (s *failingSessionStore) GetSession(_ context.Context, _ string) (*UserSession, error) {
	return nil, s.getErr
}

func (s *failingSessionStore) PutSession(_ context.Context, session UserSession) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.put = append(s.put, session)
	return nil
}

func TestUpdaterObserve_NewSession(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	updater := NewUpdater(store, logging.New("error"), WithUpdaterClock(fixedClock(now)))

	require.NoError(t, updater.Observe(context.Background(), "alice", "greeting", "web"))

	session, err := store.GetSession(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "alice", session.UserID)
	assert.Equal(t, 1, session.SessionCount)
	assert.Equal(t, "greeting", session.LastIntent)
	assert.Equal(t, now.Unix(), session.LastActivity)
	assert.Equal(t, "web", session.Channel)
	require.Len(t, session.IntentHistory, 1)
	assert.Equal(t, IntentObservation{Intent: "greeting", Timestamp: now.Unix()}, session.IntentHistory[0])
}

func TestUpdaterObserve_HistoryKeepsLastTen(t *testing.T) {
	store := NewMemorySessionStore()
	updater := NewUpdater(store, logging.New("error"))

	for i := 0; i < 11; i++ {
		label := fmt.Sprintf("intent_%d", i)
		require.NoError(t, updater.Observe(context.Background(), "alice", label, "web"))
	}

	session, err := store.GetSession(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, 11, session.SessionCount)
	assert.Equal(t, "intent_10", session.LastIntent)
	require.Len(t, session.IntentHistory, 10)
	// Oldest entry evicted first.
	assert.Equal(t, "intent_1", session.IntentHistory[0].Intent)
	assert.Equal(t, "intent_10", session.IntentHistory[9].Intent)
}

func TestUpdaterObserve_ReadFailureStartsFresh(t *testing.T) {
	store := &failingSessionStore{getErr: errors.New("read timeout")}
	updater := NewUpdater(store, logging.New("error"))

	require.NoError(t, updater.Observe(context.Background(), "alice", "question", "web"))

	require.Len(t, store.put, 1)
	assert.Equal(t, 1, store.put[0].SessionCount)
	assert.Equal(t, "question", store.put[0].LastIntent)
}

func TestUpdaterObserve_WriteFailure(t *testing.T) {
	store := &failingSessionStore{putErr: errors.New("write throttled")}
	updater := NewUpdater(store, logging.New("error"))

	err := updater.Observe(context.Background(), "alice", "thanks", "web")
	require.Error(t, err)

	var derr *DependencyError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "update session", derr.Op)
}
