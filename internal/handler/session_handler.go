package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/igestorphone/agent/internal/input"
	"github.com/igestorphone/agent/internal/session"

	"go.uber.org/zap"
)

// StartSessionRequest is the body of POST /api/v1/session/start
type StartSessionRequest struct {
	Token        string `json:"token"`
	TouchPrimary bool   `json:"touchPrimary"`
}

// ActivityRequest is one interaction event reported by the SPA
type ActivityRequest struct {
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp,omitempty"` // epoch milliseconds
}

type SessionHandler struct {
	provider *session.Provider
	hub      *input.Hub
	logger   *zap.Logger
}

func NewSessionHandler(provider *session.Provider, hub *input.Hub, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		provider: provider,
		hub:      hub,
		logger:   logger,
	}
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode session start request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.provider.StartSession(req.Token, req.TouchPrimary); err != nil {
		h.logger.Warn("Session start rejected", zap.Error(err))
		http.Error(w, "Invalid session token", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, h.provider.Status())
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.provider.Logout()
	writeJSON(w, http.StatusOK, h.provider.Status())
}

func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Status())
}

func (h *SessionHandler) ReportActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind := input.EventKind(req.Kind)
	if !input.ValidKind(kind) {
		http.Error(w, "Unknown activity kind", http.StatusBadRequest)
		return
	}

	ev := input.Event{Kind: kind}
	if req.Timestamp > 0 {
		ev.Timestamp = time.UnixMilli(req.Timestamp)
	}
	h.hub.Dispatch(ev)

	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
