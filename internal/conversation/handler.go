package conversation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chatrelay/chatrelay/pkg/logging"
)

const defaultListLimit = 50

// Handler wires HTTP requests to the ingress router and the stores.
type Handler struct {
	router   *Router
	records  ConversationStore
	sessions SessionStore
	logger   *logging.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(router *Router, records ConversationStore, sessions SessionStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		router:   router,
		records:  records,
		sessions: sessions,
		logger:   logger,
	}
}

// Ingest handles POST /messages: the body is the raw channel payload.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ack, err := h.router.Accept(r.Context(), payload)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		h.logger.Error("failed to accept message", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ack)
}

// GetConversation handles GET /conversations/{conversationID}.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		h.writeError(w, http.StatusBadRequest, "conversation id required")
		return
	}

	limit := int32(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 32); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}

	records, err := h.records.ListRecords(r.Context(), conversationID, limit)
	if err != nil {
		h.logger.Error("failed to list conversation records", "error", err, "conversation_id", conversationID)
		h.writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"records":         records,
	})
}

// GetSession handles GET /sessions/{userID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user id required")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load session", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		h.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
