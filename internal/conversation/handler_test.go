package conversation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apirouter "github.com/chatrelay/chatrelay/internal/api/router"
	"github.com/chatrelay/chatrelay/internal/conversation"
	"github.com/chatrelay/chatrelay/internal/intent"
	"github.com/chatrelay/chatrelay/internal/observability/metrics"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

type pipelineFixture struct {
	handler  http.Handler
	records  *conversation.MemoryConversationStore
	sessions *conversation.MemorySessionStore
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	logger := logging.New("error")
	registry := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(registry)

	queue := conversation.NewMemoryQueue(16)
	records := conversation.NewMemoryConversationStore()
	sessions := conversation.NewMemorySessionStore()

	router := conversation.NewRouter(queue, records, logger, conversation.WithRouterMetrics(m))
	worker := conversation.NewWorker(queue, records, conversation.NewUpdater(sessions, logger), intent.NewResponder(), logger,
		conversation.WithWorkerCount(1),
		conversation.WithWorkerMetrics(m),
	)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(func() {
		cancel()
		worker.Wait()
	})

	handler := apirouter.New(&apirouter.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(router, records, sessions, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"*"},
	})

	return &pipelineFixture{
		handler:  handler,
		records:  records,
		sessions: sessions,
	}
}

func (f *pipelineFixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *pipelineFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIngest_AcceptsMessage(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.post(t, `{"message":"Hello","user_id":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var ack conversation.Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "queued", ack.Status)
	assert.NotEmpty(t, ack.MessageID)
	assert.NotEmpty(t, ack.ConversationID)
	assert.Equal(t, "web", ack.Channel)
}

func TestIngest_RejectsEmptyMessage(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.post(t, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No message provided", body["error"])
}

func TestGetConversation_ReturnsRecords(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.post(t, `{"message":"Hello","user_id":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var ack conversation.Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))

	// Wait for the worker to store the reply.
	require.Eventually(t, func() bool {
		records, err := f.records.ListRecords(context.Background(), ack.ConversationID, 10)
		return err == nil && len(records) == 2
	}, 2*time.Second, 10*time.Millisecond)

	resp := f.get(t, "/conversations/"+ack.ConversationID)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		ConversationID string                `json:"conversation_id"`
		Records        []conversation.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, ack.ConversationID, body.ConversationID)
	require.Len(t, body.Records, 2)
	assert.Equal(t, conversation.DirectionInbound, body.Records[0].Direction)
	assert.Equal(t, conversation.DirectionOutbound, body.Records[1].Direction)
	assert.Equal(t, "greeting", body.Records[1].Intent)
}

func TestGetSession_NotFoundThenFound(t *testing.T) {
	f := newPipelineFixture(t)

	resp := f.get(t, "/sessions/alice")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	rec := f.post(t, `{"message":"thanks so much","user_id":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		session, err := f.sessions.GetSession(context.Background(), "alice")
		return err == nil && session != nil
	}, 2*time.Second, 10*time.Millisecond)

	resp = f.get(t, "/sessions/alice")
	require.Equal(t, http.StatusOK, resp.Code)

	var session conversation.UserSession
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	assert.Equal(t, "alice", session.UserID)
	assert.Equal(t, "thanks", session.LastIntent)
	assert.Equal(t, 1, session.SessionCount)
}

func TestHealthCheck(t *testing.T) {
	f := newPipelineFixture(t)

	resp := f.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newPipelineFixture(t)

	rec := f.post(t, `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "chatrelay_pipeline_ingress_total")
}
