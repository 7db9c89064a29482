package handlers

import (
	"net/http"
	"strings"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type DevicesHandler struct {
	Store *store.Store
}

type registerDeviceTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
}

func (h DevicesHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req registerDeviceTokenRequest
	if !decodeValid(w, r, &req) {
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Platform == "" {
		req.Platform = "android"
	}
	if err := h.Store.UpsertDeviceToken(r.Context(), user.ID, models.DeviceToken{Token: req.Token, Platform: req.Platform}); err != nil {
		writeStoreError(w, err, "failed to register token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}
