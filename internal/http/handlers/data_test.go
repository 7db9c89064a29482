package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/backup"
	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/kv"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

func TestDataHandler_ExportImportRoundTrip(t *testing.T) {
	src := newStore(t)
	admin := addUser(t, src, models.User{Username: "root", Role: models.RoleAdmin})
	require.NoError(t, src.SaveSchedule(context.Background(), admin.ID, models.ScheduleMap{"Mon-0": {Subject: "Math", Tasks: []models.Task{}}}))
	h := DataHandler{Store: src, Audit: Auditor{}, Log: quiet()}

	rec := serve(h.Export, request(t, http.MethodGet, "/x", admin, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()

	dst := store.New(kv.NewMemory(), quiet())
	imp := DataHandler{Store: dst, Audit: Auditor{}, Log: quiet()}
	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader(exported))
	req = req.WithContext(httpctx.WithUser(req.Context(), admin))
	rec = serve(imp.Import, req, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	again, err := dst.ExportAll(context.Background())
	require.NoError(t, err)
	var original store.Snapshot
	require.NoError(t, json.Unmarshal(exported, &original))
	require.Equal(t, len(original), len(again))
	for key, raw := range original {
		assert.Equal(t, string(raw), string(again[key]), key)
	}
}

func TestDataHandler_ImportRejections(t *testing.T) {
	s := newStore(t)
	admin := addUser(t, s, models.User{Username: "root", Role: models.RoleAdmin})
	second := addUser(t, s, models.User{Username: "deputy", Role: models.RoleSecondaryAdmin})
	h := DataHandler{Store: s, Audit: Auditor{}, Log: quiet()}

	rec := serve(h.Import, request(t, http.MethodPost, "/x", second, map[string]interface{}{}), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h.Import, request(t, http.MethodPost, "/x", admin, map[string]interface{}{"bogus_key": 1}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataHandler_Backup(t *testing.T) {
	s := newStore(t)
	admin := addUser(t, s, models.User{Username: "root", Role: models.RoleAdmin})

	h := DataHandler{Store: s, Target: backup.Disabled{}, Audit: Auditor{}, Log: quiet()}
	rec := serve(h.Backup, request(t, http.MethodPost, "/x", admin, nil), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	dir := t.TempDir()
	target, err := backup.NewDirTarget(dir)
	require.NoError(t, err)
	h.Target = target
	rec = serve(h.Backup, request(t, http.MethodPost, "/x", admin, nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	loc := decode[map[string]string](t, rec)["location"]
	assert.Equal(t, dir, filepath.Dir(loc))
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Contains(t, snap, store.UserKey(admin.ID))
}
