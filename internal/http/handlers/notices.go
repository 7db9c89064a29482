package handlers

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/notice"
	"schoolhub/backend/internal/poller"
	"schoolhub/backend/internal/store"
)

// SnapshotReader exposes the latest poll result of a session.
type SnapshotReader interface {
	Snapshot(sessionID string) (poller.Snapshot, bool)
}

type NoticesHandler struct {
	Store   *store.Store
	Pollers SnapshotReader
}

// Current returns what the session's poller last observed. Without a running
// poller the notice is computed from the request's user record.
func (h NoticesHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	sess := httpctx.SessionFromContext(r.Context())
	if user == nil || sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.Pollers != nil {
		if snap, ok := h.Pollers.Snapshot(sess.ID); ok && !snap.CheckedAt.IsZero() {
			writeJSON(w, http.StatusOK, snap)
			return
		}
	}
	snap := poller.Snapshot{
		PendingCount: len(notice.Pending(*user)),
		Connected:    h.Store.Connected(),
		CheckedAt:    time.Now().UTC(),
	}
	if next, ok := notice.Next(*user); ok {
		snap.Notice = &next
	}
	if isAdmin(user) {
		snap.PendingModeration = store.PendingModeration(h.Store.CommunityPosts(r.Context()), h.Store.AssessmentEvents(r.Context()))
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h NoticesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, notice.Pending(*user))
}

func (h NoticesHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind := notice.Kind(r.PathValue("kind"))
	id := r.PathValue("id")

	updated, err := notice.Acknowledge(*user, kind, id, time.Now().UTC())
	switch {
	case errors.Is(err, notice.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "unknown notice kind")
		return
	case errors.Is(err, notice.ErrNotFound):
		writeError(w, http.StatusNotFound, "notice not found")
		return
	case errors.Is(err, notice.ErrAlreadyAcknowledged):
		writeError(w, http.StatusConflict, "notice already acknowledged")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to acknowledge")
		return
	}
	if err := h.Store.SaveUser(r.Context(), updated); err != nil {
		writeStoreError(w, err, "failed to acknowledge")
		return
	}

	resp := map[string]interface{}{"next": nil}
	if next, ok := notice.Next(updated); ok {
		resp["next"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}
