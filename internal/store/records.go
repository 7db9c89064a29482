package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolhub/backend/internal/models"
)

func (s *Store) SystemRecords(ctx context.Context) []models.SystemRecord {
	records, _ := s.loadSystemRecords(ctx)
	return records
}

func (s *Store) loadSystemRecords(ctx context.Context) ([]models.SystemRecord, error) {
	records, _, err := Load[[]models.SystemRecord](ctx, s, KeySystemRecords)
	if err != nil || records == nil {
		return []models.SystemRecord{}, err
	}
	return records, nil
}

// AppendSystemRecord adds an entry to the audit log.
func (s *Store) AppendSystemRecord(ctx context.Context, record models.SystemRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	records, err := s.loadSystemRecords(ctx)
	if err != nil {
		return errors.Wrap(err, "store: append system record")
	}
	return s.Set(ctx, KeySystemRecords, append(records, record))
}

// ListSystemRecords returns the newest records first, at most limit entries.
func (s *Store) ListSystemRecords(ctx context.Context, limit int) []models.SystemRecord {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	records := s.SystemRecords(ctx)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// DeleteSystemRecords drops the records with the given ids. An empty id list
// clears the whole log, even one that no longer decodes. It returns the number
// of removed entries.
func (s *Store) DeleteSystemRecords(ctx context.Context, ids []string) (int, error) {
	records, err := s.loadSystemRecords(ctx)
	if err != nil && (len(ids) > 0 || errors.Is(err, ErrOffline)) {
		return 0, errors.Wrap(err, "store: delete system records")
	}
	if len(ids) == 0 {
		if err := s.Set(ctx, KeySystemRecords, []models.SystemRecord{}); err != nil {
			return 0, err
		}
		return len(records), nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]models.SystemRecord, 0, len(records))
	for _, record := range records {
		if !drop[record.ID] {
			kept = append(kept, record)
		}
	}
	if err := s.Set(ctx, KeySystemRecords, kept); err != nil {
		return 0, err
	}
	return len(records) - len(kept), nil
}

func (s *Store) BroadcastHistory(ctx context.Context, teacherID string) []models.BroadcastRecord {
	history, _ := s.loadBroadcastHistory(ctx, teacherID)
	return history
}

func (s *Store) loadBroadcastHistory(ctx context.Context, teacherID string) ([]models.BroadcastRecord, error) {
	history, _, err := Load[[]models.BroadcastRecord](ctx, s, BroadcastHistoryKey(teacherID))
	if err != nil || history == nil {
		return []models.BroadcastRecord{}, err
	}
	return history, nil
}

func (s *Store) AppendBroadcastHistory(ctx context.Context, record models.BroadcastRecord) error {
	history, err := s.loadBroadcastHistory(ctx, record.TeacherID)
	if err != nil {
		return errors.Wrap(err, "store: append broadcast history")
	}
	return s.Set(ctx, BroadcastHistoryKey(record.TeacherID), append(history, record))
}
