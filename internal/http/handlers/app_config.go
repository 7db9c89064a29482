package handlers

import (
	"net/http"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type FlagsHandler struct {
	Store *store.Store
	Audit Auditor
}

type updateFlagsRequest struct {
	Community         *bool `json:"community"`
	GPA               *bool `json:"gpa"`
	Calendar          *bool `json:"calendar"`
	AIFeatures        *bool `json:"aiFeatures"`
	AutoApprovePosts  *bool `json:"autoApprovePosts"`
	AutoApproveEvents *bool `json:"autoApproveEvents"`
}

func (req updateFlagsRequest) apply(flags models.FeatureFlags) models.FeatureFlags {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&flags.Community, req.Community)
	set(&flags.GPA, req.GPA)
	set(&flags.Calendar, req.Calendar)
	set(&flags.AIFeatures, req.AIFeatures)
	set(&flags.AutoApprovePosts, req.AutoApprovePosts)
	set(&flags.AutoApproveEvents, req.AutoApproveEvents)
	return flags
}

func (h FlagsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if httpctx.UserFromContext(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.Store.FeatureFlags(r.Context()))
}

// Update changes only the flags present in the body.
func (h FlagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	var req updateFlagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	current, err := h.Store.LoadFeatureFlags(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to read flags")
		return
	}
	next := req.apply(current)
	if err := h.Store.SaveFeatureFlags(r.Context(), next); err != nil {
		writeStoreError(w, err, "failed to save flags")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionFlagsUpdate, "", map[string]interface{}{
		"community":  next.Community,
		"gpa":        next.GPA,
		"calendar":   next.Calendar,
		"aiFeatures": next.AIFeatures,
	})
	writeJSON(w, http.StatusOK, next)
}
