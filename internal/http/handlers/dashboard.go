package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bettercallhomme/voiceline/internal/appointments"
	"github.com/bettercallhomme/voiceline/internal/conversation"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// DashboardHandler serves the read/manage API used by the operator dashboard.
type DashboardHandler struct {
	appts  *appointments.Service
	turns  conversation.TurnStore
	logger *logging.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(appts *appointments.Service, turns conversation.TurnStore, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{appts: appts, turns: turns, logger: logger}
}

// ListAppointments handles GET /api/appointments.
func (h *DashboardHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := appointments.ListFilter{
		Status:       q.Get("status"),
		TechnicianID: q.Get("technician_id"),
		Date:         q.Get("date"),
		Page:         parseIntParam(q.Get("page"), 1),
		Limit:        parseIntParam(q.Get("limit"), 50),
	}
	if filter.Status != "" && !appointments.ValidStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	appts, total, err := h.appts.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// GetAppointment handles GET /api/appointments/{id}.
func (h *DashboardHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.appts.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get appointment", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get appointment")
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// UpdateAppointmentStatus handles PATCH /api/appointments/{id}/status.
func (h *DashboardHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !appointments.ValidStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	appt, err := h.appts.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		h.logger.Error("failed to update appointment status", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update appointment")
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListConversations handles GET /api/conversations.
func (h *DashboardHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := conversation.TurnFilter{
		CallID: q.Get("call_sid"),
		Page:   parseIntParam(q.Get("page"), 1),
		Limit:  parseIntParam(q.Get("limit"), 50),
	}

	turns, total, err := h.turns.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list conversation turns", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"turns": turns,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// GetConversation handles GET /api/conversations/{callSid}.
func (h *DashboardHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	callSid := chi.URLParam(r, "callSid")
	turns, err := h.turns.ListByCall(r.Context(), callSid)
	if err != nil {
		h.logger.Error("failed to get conversation", "call_sid", callSid, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if len(turns) == 0 {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"call_sid": callSid,
		"turns":    turns,
	})
}

// GetConversationSummary handles GET /api/conversations/{callSid}/summary.
func (h *DashboardHandler) GetConversationSummary(w http.ResponseWriter, r *http.Request) {
	callSid := chi.URLParam(r, "callSid")
	turns, err := h.turns.ListByCall(r.Context(), callSid)
	if err != nil {
		h.logger.Error("failed to get conversation", "call_sid", callSid, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if len(turns) == 0 {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conversation.Summarize(callSid, turns))
}

// GetAnalytics handles GET /api/analytics.
func (h *DashboardHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}

	apptStats, err := h.appts.AnalyticsReport(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to compute appointment analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	turnStats, err := h.turns.Analytics(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to compute conversation analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments":  apptStats,
		"conversations": turnStats,
		"generated_at":  time.Now().UTC(),
	})
}

// ListTechnicians handles GET /api/technicians.
func (h *DashboardHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"technicians": h.appts.Technicians(),
	})
}

// Health handles GET /health.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("handlers: unparseable time %q", raw)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
