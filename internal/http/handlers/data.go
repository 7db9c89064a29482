package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/backup"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

// DataHandler serves full exports, imports and backups of the record store.
type DataHandler struct {
	Store  *store.Store
	Target backup.Target
	Audit  Auditor
	Log    *slog.Logger
}

func (h DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	snapshot, err := h.Store.ExportAll(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to export")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionDataExport, "", map[string]interface{}{"keys": len(snapshot)})
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.Name(time.Now())+`"`)
	writeJSON(w, http.StatusOK, snapshot)
}

// Import overwrites every key in the uploaded snapshot. Only a full admin may
// import, and a snapshot with unknown keys or invalid values is rejected whole.
func (h DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if !hasRole(user, models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	var snapshot store.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snapshot")
		return
	}
	if err := h.Store.ImportAll(r.Context(), snapshot); err != nil {
		if errors.Is(err, store.ErrOffline) {
			writeStoreError(w, err, "failed to import")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionDataImport, "", map[string]interface{}{"keys": len(snapshot)})
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(snapshot)})
}

func (h DataHandler) Backup(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	snapshot, err := h.Store.ExportAll(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to export")
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode snapshot")
		return
	}
	location, err := h.Target.Put(r.Context(), backup.Name(time.Now()), data)
	if err != nil {
		if errors.Is(err, backup.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "backups are not configured")
			return
		}
		h.Log.Error("backup upload failed", "err", err)
		writeError(w, http.StatusBadGateway, "backup upload failed")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionDataExport, location, map[string]interface{}{"keys": len(snapshot)})
	writeJSON(w, http.StatusCreated, map[string]string{"location": location})
}
