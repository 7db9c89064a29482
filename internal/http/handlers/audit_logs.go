package handlers

import (
	"net/http"
	"strconv"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/store"
)

type RecordsHandler struct {
	Store *store.Store
}

type deleteRecordsRequest struct {
	IDs []string `json:"ids"`
}

func (h RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(httpctx.UserFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, h.Store.ListSystemRecords(r.Context(), limit))
}

// Delete removes the listed records, or all records when ids is empty.
func (h RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(httpctx.UserFromContext(r.Context())) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	var req deleteRecordsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}
	removed, err := h.Store.DeleteSystemRecords(r.Context(), req.IDs)
	if err != nil {
		writeStoreError(w, err, "failed to delete records")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
