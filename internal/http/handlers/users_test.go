package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/notify"
)

type endRecorder struct{ ended []string }

func (e *endRecorder) EndUser(userID string) int {
	e.ended = append(e.ended, userID)
	return 1
}

type pushRecorder struct {
	users []string
	msgs  []notify.Message
}

func (p *pushRecorder) NotifyUsers(_ context.Context, userIDs []string, msg notify.Message) error {
	p.users = append(p.users, userIDs...)
	p.msgs = append(p.msgs, msg)
	return nil
}

func usersHandler(t *testing.T) (UsersHandler, *endRecorder, *pushRecorder) {
	s := newStore(t)
	ends := &endRecorder{}
	push := &pushRecorder{}
	return UsersHandler{Store: s, Sessions: ends, Notifier: push, Audit: Auditor{Store: s, Log: quiet()}, Log: quiet()}, ends, push
}

func TestUsersHandler_BanEndsSessions(t *testing.T) {
	h, ends, _ := usersHandler(t)
	admin := addUser(t, h.Store, models.User{Username: "root", Role: models.RoleAdmin})
	student := addUser(t, h.Store, models.User{Username: "ann", Role: models.RoleStudent, PasswordHash: "secret-hash"})

	rec := serve(h.Ban, request(t, http.MethodPost, "/x", admin, nil), map[string]string{"id": student.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Equal(t, []string{student.ID}, ends.ended)

	stored, _ := h.Store.GetUser(context.Background(), student.ID)
	assert.True(t, stored.Banned)

	records := h.Store.ListSystemRecords(context.Background(), 0)
	require.NotEmpty(t, records)
	assert.Equal(t, models.ActionUserBan, records[0].Action)
	assert.Equal(t, "root", records[0].Actor)
}

func TestUsersHandler_SecondaryAdminLimits(t *testing.T) {
	h, _, _ := usersHandler(t)
	admin := addUser(t, h.Store, models.User{Username: "root", Role: models.RoleAdmin})
	second := addUser(t, h.Store, models.User{Username: "deputy", Role: models.RoleSecondaryAdmin})
	student := addUser(t, h.Store, models.User{Username: "ann", Role: models.RoleStudent})

	rec := serve(h.Ban, request(t, http.MethodPost, "/x", second, nil), map[string]string{"id": admin.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h.UpdateRole, request(t, http.MethodPost, "/x", second, updateUserRoleRequest{Role: models.RoleAdmin}),
		map[string]string{"id": student.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h.Ban, request(t, http.MethodPost, "/x", second, nil), map[string]string{"id": second.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.List, request(t, http.MethodGet, "/x", student, nil), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUsersHandler_IssueWarningPushes(t *testing.T) {
	h, _, push := usersHandler(t)
	admin := addUser(t, h.Store, models.User{Username: "root", Role: models.RoleAdmin})
	student := addUser(t, h.Store, models.User{Username: "ann", Role: models.RoleStudent})

	rec := serve(h.IssueWarning, request(t, http.MethodPost, "/x", admin, issueWarningRequest{Message: "Phones away"}),
		map[string]string{"id": student.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored, _ := h.Store.GetUser(context.Background(), student.ID)
	require.Len(t, stored.Warnings, 1)
	assert.Equal(t, "Phones away", stored.Warnings[0].Message)
	assert.False(t, stored.Warnings[0].Acknowledged)
	assert.Equal(t, []string{student.ID}, push.users)
	assert.Equal(t, "warning", push.msgs[0].Data["type"])
}

func TestUsersHandler_ApproveTeacher(t *testing.T) {
	h, _, _ := usersHandler(t)
	admin := addUser(t, h.Store, models.User{Username: "root", Role: models.RoleAdmin})
	teacher := addUser(t, h.Store, models.User{Username: "mr.b", Role: models.RoleTeacher})
	student := addUser(t, h.Store, models.User{Username: "ann", Role: models.RoleStudent})

	rec := serve(h.Approve, request(t, http.MethodPost, "/x", admin, nil), map[string]string{"id": teacher.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ := h.Store.GetUser(context.Background(), teacher.ID)
	assert.True(t, stored.Approved)

	rec = serve(h.Approve, request(t, http.MethodPost, "/x", admin, nil), map[string]string{"id": student.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersHandler_Delete(t *testing.T) {
	h, ends, _ := usersHandler(t)
	admin := addUser(t, h.Store, models.User{Username: "root", Role: models.RoleAdmin})
	student := addUser(t, h.Store, models.User{Username: "ann", Role: models.RoleStudent})
	require.NoError(t, h.Store.SaveSchedule(context.Background(), student.ID, models.ScheduleMap{"Mon-0": {Subject: "Math"}}))

	rec := serve(h.Delete, request(t, http.MethodDelete, "/x", admin, nil), map[string]string{"id": student.ID})
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := h.Store.GetUser(context.Background(), student.ID)
	assert.False(t, ok)
	assert.Empty(t, h.Store.GetSchedule(context.Background(), student.ID))
	assert.Equal(t, []string{student.ID}, ends.ended)
}
