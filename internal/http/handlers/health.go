package handlers

import (
	"net/http"

	"schoolhub/backend/internal/store"
)

type HealthHandler struct {
	Store *store.Store
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.Store.CheckConnection(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "degraded", "store": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "store": true})
}
