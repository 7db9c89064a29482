package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type EventsHandler struct {
	Store *store.Store
	Audit Auditor
}

type createEventRequest struct {
	Title     string              `json:"title" validate:"required,max=120"`
	Subject   string              `json:"subject"`
	Date      string              `json:"date" validate:"required,datetime=2006-01-02"`
	Category  models.TaskCategory `json:"category" validate:"omitempty,oneof=Test Quiz Project Homework Presentation Personal Others"`
	EventType string              `json:"eventType"`
}

// List returns approved assessment events ordered by date. Admins also see
// pending and rejected ones; ?from= and ?to= bound the date range.
func (h EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.Store.FeatureFlags(r.Context()).Calendar {
		writeError(w, http.StatusForbidden, "calendar is disabled")
		return
	}
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	out := []models.AssessmentEvent{}
	for _, event := range h.Store.AssessmentEvents(r.Context()) {
		if event.Status != models.StatusApproved && !isAdmin(user) && event.CreatedBy != user.ID {
			continue
		}
		// ISO dates compare correctly as strings.
		if (from != "" && event.Date < from) || (to != "" && event.Date > to) {
			continue
		}
		out = append(out, event)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

func (h EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	flags := h.Store.FeatureFlags(r.Context())
	if !flags.Calendar {
		writeError(w, http.StatusForbidden, "calendar is disabled")
		return
	}
	var req createEventRequest
	if !decodeValid(w, r, &req) {
		return
	}
	events, err := h.Store.LoadAssessmentEvents(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to read events")
		return
	}
	event := models.AssessmentEvent{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Subject:   strings.TrimSpace(req.Subject),
		Date:      req.Date,
		Category:  req.Category,
		EventType: strings.TrimSpace(req.EventType),
		Status:    models.StatusPending,
		CreatedBy: user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if event.Category == "" {
		event.Category = models.CategoryTest
	}
	if event.EventType == "" {
		event.EventType = "assessment"
	}
	if flags.AutoApproveEvents || isAdmin(user) {
		event.Status = models.StatusApproved
	}
	if err := h.Store.SaveAssessmentEvents(r.Context(), append(events, event)); err != nil {
		writeStoreError(w, err, "failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h EventsHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	var req moderateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	events, err := h.Store.LoadAssessmentEvents(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to read events")
		return
	}
	for i := range events {
		if events[i].ID != id {
			continue
		}
		events[i].Status = req.Status
		if err := h.Store.SaveAssessmentEvents(r.Context(), events); err != nil {
			writeStoreError(w, err, "failed to moderate event")
			return
		}
		h.Audit.Record(r.Context(), user, models.ActionEventModerated, id, map[string]interface{}{"status": req.Status})
		writeJSON(w, http.StatusOK, events[i])
		return
	}
	writeError(w, http.StatusNotFound, "event not found")
}
