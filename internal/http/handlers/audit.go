package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

// Auditor appends system records. Failures are logged, never returned, so an
// unreachable store does not fail the request that triggered the record.
type Auditor struct {
	Store *store.Store
	Log   *slog.Logger
}

func (a Auditor) Record(ctx context.Context, actor *models.User, action models.Action, target string, details map[string]interface{}) {
	if a.Store == nil {
		return
	}
	record := models.SystemRecord{
		ID:        uuid.NewString(),
		Action:    action,
		Target:    target,
		Timestamp: time.Now().UTC(),
		Details:   formatDetails(details),
	}
	if actor != nil {
		record.Actor = actor.Username
	}
	if err := a.Store.AppendSystemRecord(ctx, record); err != nil && a.Log != nil {
		a.Log.Warn("system record not written", "action", action, "err", err)
	}
}

func formatDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
