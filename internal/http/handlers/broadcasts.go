package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/notify"
	"schoolhub/backend/internal/store"
)

// Pusher delivers push notifications to users' devices.
type Pusher interface {
	NotifyUsers(ctx context.Context, userIDs []string, msg notify.Message) error
}

type BroadcastsHandler struct {
	Store    *store.Store
	Notifier Pusher
	Audit    Auditor
	Log      *slog.Logger
}

type createBroadcastRequest struct {
	Message    string   `json:"message" validate:"required,max=1000"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,required"`
}

type broadcastResponse struct {
	Record      models.BroadcastRecord `json:"record"`
	Missing     []string               `json:"missing"`
	Undelivered []string               `json:"undelivered"`
}

func canBroadcast(user *models.User) bool {
	if isAdmin(user) {
		return true
	}
	return user != nil && user.Role == models.RoleTeacher && user.Approved
}

// Create appends the message to every recipient's broadcast list. Unknown
// recipients are reported back and skipped. Delivery stops at the first store
// failure; the recipients reached so far are still recorded and the rest are
// reported as undelivered.
func (h BroadcastsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !canBroadcast(user) {
		writeError(w, http.StatusForbidden, "teacher required")
		return
	}
	var req createBroadcastRequest
	if !decodeValid(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	message := strings.TrimSpace(req.Message)
	record := models.BroadcastRecord{
		ID:         uuid.NewString(),
		TeacherID:  user.ID,
		Message:    message,
		Recipients: []string{},
		SentAt:     now,
	}
	missing := []string{}
	undelivered := []string{}
	var deliveryErr error
	seen := map[string]bool{}
	for _, id := range req.Recipients {
		if seen[id] {
			continue
		}
		seen[id] = true
		if deliveryErr != nil {
			undelivered = append(undelivered, id)
			continue
		}
		recipient, ok, err := h.Store.LoadUser(r.Context(), id)
		if err == nil && !ok {
			missing = append(missing, id)
			continue
		}
		if err == nil {
			recipient.Broadcasts = append(recipient.Broadcasts, models.Broadcast{
				ID:        record.ID,
				Message:   message,
				From:      user.ID,
				FromName:  user.FullName,
				CreatedAt: now,
			})
			err = h.Store.SaveUser(r.Context(), *recipient)
		}
		if err != nil {
			h.Log.Warn("broadcast delivery stopped", "broadcast_id", record.ID, "recipient", id, "err", err)
			deliveryErr = err
			undelivered = append(undelivered, id)
			continue
		}
		record.Recipients = append(record.Recipients, id)
	}
	if deliveryErr != nil && len(record.Recipients) == 0 {
		writeStoreError(w, deliveryErr, "failed to deliver broadcast")
		return
	}

	if err := h.Store.AppendBroadcastHistory(r.Context(), record); err != nil {
		h.Log.Warn("broadcast history not written", "broadcast_id", record.ID, "err", err)
	}
	h.Audit.Record(r.Context(), user, models.ActionBroadcastSent, record.ID, map[string]interface{}{
		"recipients":  len(record.Recipients),
		"undelivered": len(undelivered),
	})
	h.push(r.Context(), record.Recipients, notify.Message{
		Title: "Message from " + user.FullName,
		Body:  message,
		Data:  map[string]string{"type": "broadcast", "broadcast_id": record.ID},
	})
	writeJSON(w, http.StatusCreated, broadcastResponse{Record: record, Missing: missing, Undelivered: undelivered})
}

func (h BroadcastsHandler) History(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !canBroadcast(user) {
		writeError(w, http.StatusForbidden, "teacher required")
		return
	}
	writeJSON(w, http.StatusOK, h.Store.BroadcastHistory(r.Context(), user.ID))
}

func (h BroadcastsHandler) push(ctx context.Context, userIDs []string, msg notify.Message) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.NotifyUsers(ctx, userIDs, msg); err != nil {
		h.Log.Warn("push delivery failed", "type", msg.Data["type"], "err", err)
	}
}
