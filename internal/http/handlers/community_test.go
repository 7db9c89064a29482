package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

func TestCommunityHandler_ModerationFlow(t *testing.T) {
	s := newStore(t)
	h := CommunityHandler{Store: s, Audit: Auditor{Store: s, Log: quiet()}}
	admin := addUser(t, s, models.User{Username: "root", Role: models.RoleAdmin})
	ann := addUser(t, s, models.User{Username: "ann", FullName: "Ann", Role: models.RoleStudent})
	bob := addUser(t, s, models.User{Username: "bob", Role: models.RoleStudent})

	rec := serve(h.Create, request(t, http.MethodPost, "/x", ann, createPostRequest{Title: "Study group", Body: "Library at 4"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[models.CommunityPost](t, rec)
	assert.Equal(t, models.StatusPending, post.Status)
	assert.Equal(t, 1, store.PendingModeration(s.CommunityPosts(context.Background()), nil))

	rec = serve(h.List, request(t, http.MethodGet, "/x", bob, nil), nil)
	assert.Empty(t, decode[[]models.CommunityPost](t, rec))
	rec = serve(h.List, request(t, http.MethodGet, "/x", ann, nil), nil)
	assert.Len(t, decode[[]models.CommunityPost](t, rec), 1)

	rec = serve(h.Moderate, request(t, http.MethodPost, "/x", bob, moderateRequest{Status: models.StatusApproved}), map[string]string{"id": post.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h.Moderate, request(t, http.MethodPost, "/x", admin, moderateRequest{Status: models.StatusApproved}), map[string]string{"id": post.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h.List, request(t, http.MethodGet, "/x", bob, nil), nil)
	assert.Len(t, decode[[]models.CommunityPost](t, rec), 1)
}

func TestCommunityHandler_DisabledFlag(t *testing.T) {
	s := newStore(t)
	flags := s.FeatureFlags(context.Background())
	flags.Community = false
	require.NoError(t, s.SaveFeatureFlags(context.Background(), flags))
	h := CommunityHandler{Store: s}
	ann := addUser(t, s, models.User{Username: "ann", Role: models.RoleStudent})

	rec := serve(h.Create, request(t, http.MethodPost, "/x", ann, createPostRequest{Title: "t", Body: "b"}), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventsHandler_CreateDefaultsAndAutoApprove(t *testing.T) {
	s := newStore(t)
	h := EventsHandler{Store: s, Audit: Auditor{}}
	ann := addUser(t, s, models.User{Username: "ann", Role: models.RoleStudent})

	rec := serve(h.Create, request(t, http.MethodPost, "/x", ann, createEventRequest{Title: "Algebra test", Date: "2026-11-03"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[models.AssessmentEvent](t, rec)
	assert.Equal(t, models.CategoryTest, event.Category)
	assert.Equal(t, "assessment", event.EventType)
	assert.Equal(t, models.StatusPending, event.Status)

	flags := s.FeatureFlags(context.Background())
	flags.AutoApproveEvents = true
	require.NoError(t, s.SaveFeatureFlags(context.Background(), flags))
	rec = serve(h.Create, request(t, http.MethodPost, "/x", ann, createEventRequest{Title: "Quiz", Date: "2026-11-01", Category: models.CategoryQuiz}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.StatusApproved, decode[models.AssessmentEvent](t, rec).Status)

	rec = serve(h.Create, request(t, http.MethodPost, "/x", ann, createEventRequest{Title: "Bad", Date: "next week"}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.List, request(t, http.MethodGet, "/x?from=2026-11-01", ann, nil), nil)
	events := decode[[]models.AssessmentEvent](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "2026-11-01", events[0].Date)
}

func TestCommunityHandler_FailedReadKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s, backend := newFlakyStore(t)
	h := CommunityHandler{Store: s, Audit: Auditor{Store: s, Log: quiet()}}
	ann := addUser(t, s, models.User{Username: "ann", Role: models.RoleStudent})
	existing := []models.CommunityPost{{ID: "p1", AuthorID: ann.ID, Title: "Book swap", Status: models.StatusApproved}}
	require.NoError(t, s.SaveCommunityPosts(ctx, existing))

	backend.failGet(store.KeyCommunityPosts)
	rec := serve(h.Create, request(t, http.MethodPost, "/x", ann, createPostRequest{Title: "Study group", Body: "Library at 4"}), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	posts := s.CommunityPosts(ctx)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}
