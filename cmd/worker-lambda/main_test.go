package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/internal/conversation"
	"github.com/chatrelay/chatrelay/internal/intent"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

func TestHandle_ProcessesBatch(t *testing.T) {
	logger := logging.New("error")
	records := conversation.NewMemoryConversationStore()
	sessions := conversation.NewMemorySessionStore()
	worker := conversation.NewWorker(nil, records, conversation.NewUpdater(sessions, logger), intent.NewResponder(), logger)

	a := &app{worker: worker}
	evt := events.SQSEvent{Records: []events.SQSMessage{
		{Body: `{"conversation_id":"conv-1","user_id":"alice","message":"Hello","channel":"web","timestamp":1710500000}`},
		{Body: `{broken`},
	}}

	out, err := a.handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, "processed", out.Status)
	assert.Equal(t, 1, out.Count)

	stored, err := records.ListRecords(context.Background(), "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, conversation.DirectionOutbound, stored[0].Direction)
	assert.Equal(t, "greeting", stored[0].Intent)

	session, err := sessions.GetSession(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 1, session.SessionCount)
}

func TestHandle_EmptyEvent(t *testing.T) {
	logger := logging.New("error")
	worker := conversation.NewWorker(nil, conversation.NewMemoryConversationStore(),
		conversation.NewUpdater(conversation.NewMemorySessionStore(), logger), intent.NewResponder(), logger)

	out, err := (&app{worker: worker}).handle(context.Background(), events.SQSEvent{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
}
