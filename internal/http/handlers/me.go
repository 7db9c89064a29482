package handlers

import (
	"net/http"

	"schoolhub/backend/internal/auth"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type MeHandler struct {
	Store *store.Store
	Audit Auditor
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type meResponse struct {
	User  models.User         `json:"user"`
	Flags models.FeatureFlags `json:"flags"`
}

func (h MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: publicUser(*user), Flags: h.Store.FeatureFlags(r.Context())})
}

func (h MeHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	updated := *user
	updated.PasswordHash = hash
	if err := h.Store.SaveUser(r.Context(), updated); err != nil {
		writeStoreError(w, err, "failed to update password")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionPasswordReset, user.ID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
