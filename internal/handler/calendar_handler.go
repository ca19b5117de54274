package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/igestorphone/agent/internal/calendar"
	"github.com/igestorphone/agent/internal/repository"
	"github.com/igestorphone/agent/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	service *service.CalendarService
	logger  *zap.Logger
}

func NewCalendarHandler(service *service.CalendarService, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		logger:  logger,
	}
}

// Normalize converts a raw record to the canonical shape without persisting
func (h *CalendarHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var raw calendar.RawSaleEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, calendar.NormalizeEvent(raw))
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var raw calendar.RawSaleEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ev, err := h.service.CreateEvent(raw)
	if err != nil {
		h.logger.Error("Failed to create calendar event", zap.Error(err))
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, ev)
}

func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	events, err := h.service.ListEvents(from, to)
	if err != nil {
		h.logger.Error("Failed to list calendar events", zap.Error(err))
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []calendar.SaleEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ev, err := h.service.GetEvent(id)
	if err != nil {
		h.respondEventError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

// UpdateStatusRequest is the body of PATCH /api/v1/calendar/events/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *CalendarHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ev, err := h.service.UpdateStatus(id, calendar.Status(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		h.logger.Warn("Failed to update event status", zap.String("id", id), zap.Error(err))
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

// GetSummary returns the shareable plain-text order summary
func (h *CalendarHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	summary, err := h.service.Summary(id)
	if err != nil {
		h.respondEventError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(summary))
}

func (h *CalendarHandler) ShareEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.Share(id); err != nil {
		h.respondEventError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *CalendarHandler) respondEventError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	h.logger.Error("Calendar event request failed", zap.String("id", id), zap.Error(err))
	http.Error(w, "Internal error", http.StatusInternalServerError)
}
