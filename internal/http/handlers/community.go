package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/httpctx"
	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

type CommunityHandler struct {
	Store *store.Store
	Audit Auditor
}

type createPostRequest struct {
	Title string `json:"title" validate:"required,max=120"`
	Body  string `json:"body" validate:"required,max=5000"`
}

type moderateRequest struct {
	Status models.ModerationStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// List returns approved posts, plus the caller's own pending posts. Admins see
// everything and may filter with ?status=.
func (h CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.Store.FeatureFlags(r.Context()).Community {
		writeError(w, http.StatusForbidden, "community is disabled")
		return
	}
	status := models.ModerationStatus(r.URL.Query().Get("status"))
	out := []models.CommunityPost{}
	for _, post := range h.Store.CommunityPosts(r.Context()) {
		visible := post.Status == models.StatusApproved || post.AuthorID == user.ID || isAdmin(user)
		if !visible || (status != "" && post.Status != status) {
			continue
		}
		out = append(out, post)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (h CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	flags := h.Store.FeatureFlags(r.Context())
	if !flags.Community {
		writeError(w, http.StatusForbidden, "community is disabled")
		return
	}
	var req createPostRequest
	if !decodeValid(w, r, &req) {
		return
	}
	posts, err := h.Store.LoadCommunityPosts(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to read posts")
		return
	}
	post := models.CommunityPost{
		ID:         uuid.NewString(),
		AuthorID:   user.ID,
		AuthorName: user.FullName,
		Title:      strings.TrimSpace(req.Title),
		Body:       strings.TrimSpace(req.Body),
		Status:     models.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if flags.AutoApprovePosts || isAdmin(user) {
		post.Status = models.StatusApproved
	}
	if err := h.Store.SaveCommunityPosts(r.Context(), append(posts, post)); err != nil {
		writeStoreError(w, err, "failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h CommunityHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	user := httpctx.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !isAdmin(user) {
		writeError(w, http.StatusForbidden, "admin required")
		return
	}
	var req moderateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	posts, err := h.Store.LoadCommunityPosts(r.Context())
	if err != nil {
		writeStoreError(w, err, "failed to read posts")
		return
	}
	idx := -1
	for i := range posts {
		if posts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	posts[idx].Status = req.Status
	if err := h.Store.SaveCommunityPosts(r.Context(), posts); err != nil {
		writeStoreError(w, err, "failed to moderate post")
		return
	}
	h.Audit.Record(r.Context(), user, models.ActionPostModerated, id, map[string]interface{}{"status": req.Status})
	writeJSON(w, http.StatusOK, posts[idx])
}
