package handlers

import (
	"net/http"

	"schoolhub/backend/internal/ai"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type AIHandler struct {
	Store *store.Store
	Text  ai.TextService
}

func (h AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.Store.FeatureFlags(r.Context()).AIFeatures || h.Text == nil {
		writeError(w, http.StatusForbidden, "AI features are disabled")
		return
	}
	var req ai.Request
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = ai.ModeStudent
		if user.Role == models.RoleTeacher {
			req.Mode = ai.ModeTeacher
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": h.Text.Reply(r.Context(), req)})
}
