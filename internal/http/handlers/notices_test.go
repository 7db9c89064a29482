package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/poller"
)

type staticSnapshots map[string]poller.Snapshot

func (s staticSnapshots) Snapshot(id string) (poller.Snapshot, bool) {
	snap, ok := s[id]
	return snap, ok
}

func TestNoticesHandler_AcknowledgeInOrder(t *testing.T) {
	s := newStore(t)
	now := time.Now().UTC()
	user := addUser(t, s, models.User{
		Username: "ann",
		Role:     models.RoleStudent,
		Warnings: []models.Warning{{ID: "w1", Message: "late", CreatedAt: now}},
		Broadcasts: []models.Broadcast{
			{ID: "b1", Message: "bring calculators", CreatedAt: now},
		},
	})
	h := NoticesHandler{Store: s}

	rec := serve(h.Current, request(t, http.MethodGet, "/x", user, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[poller.Snapshot](t, rec)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, "w1", snap.Notice.ID)
	assert.Equal(t, 2, snap.PendingCount)

	rec = serve(h.Acknowledge, request(t, http.MethodPost, "/x", user, nil), map[string]string{"kind": "warning", "id": "w1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]map[string]interface{}](t, rec)
	assert.Equal(t, "b1", resp["next"]["id"])

	stored, ok := s.GetUser(context.Background(), user.ID)
	require.True(t, ok)
	assert.True(t, stored.Warnings[0].Acknowledged)
	require.NotNil(t, stored.Warnings[0].AcknowledgedAt)

	rec = serve(h.Acknowledge, request(t, http.MethodPost, "/x", stored, nil), map[string]string{"kind": "warning", "id": "w1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.Acknowledge, request(t, http.MethodPost, "/x", stored, nil), map[string]string{"kind": "memo", "id": "w1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.Acknowledge, request(t, http.MethodPost, "/x", stored, nil), map[string]string{"kind": "broadcast", "id": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoticesHandler_CurrentPrefersPollerSnapshot(t *testing.T) {
	s := newStore(t)
	user := addUser(t, s, models.User{Username: "ann", Role: models.RoleStudent})
	checked := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	h := NoticesHandler{Store: s, Pollers: staticSnapshots{
		"sess-" + user.ID: {PendingCount: 7, Connected: true, CheckedAt: checked},
	}}

	rec := serve(h.Current, request(t, http.MethodGet, "/x", user, nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[poller.Snapshot](t, rec)
	assert.Equal(t, 7, snap.PendingCount)
	assert.True(t, snap.CheckedAt.Equal(checked))
}
