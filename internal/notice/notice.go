// Package notice selects which warning or broadcast a user sees next and
// records acknowledgements. Only one notice is shown at a time: the first
// unacknowledged warning in array order, else the first unacknowledged broadcast.
package notice

import (
	"time"

	"github.com/pkg/errors"

	"schoolhub/backend/internal/models"
)

type Kind string

const (
	KindWarning   Kind = "warning"
	KindBroadcast Kind = "broadcast"
)

var (
	ErrNotFound            = errors.New("notice: not found")
	ErrAlreadyAcknowledged = errors.New("notice: already acknowledged")
	ErrUnknownKind         = errors.New("notice: unknown kind")
)

type Notice struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	From      string    `json:"from"`
	CreatedAt time.Time `json:"createdAt"`
}

func fromWarning(w models.Warning) Notice {
	return Notice{Kind: KindWarning, ID: w.ID, Message: w.Message, From: w.IssuedBy, CreatedAt: w.CreatedAt}
}

func fromBroadcast(b models.Broadcast) Notice {
	from := b.FromName
	if from == "" {
		from = b.From
	}
	return Notice{Kind: KindBroadcast, ID: b.ID, Message: b.Message, From: from, CreatedAt: b.CreatedAt}
}

// Next returns the notice to show, if any.
func Next(user models.User) (Notice, bool) {
	for _, w := range user.Warnings {
		if !w.Acknowledged {
			return fromWarning(w), true
		}
	}
	for _, b := range user.Broadcasts {
		if !b.Acknowledged {
			return fromBroadcast(b), true
		}
	}
	return Notice{}, false
}

// Pending lists every unacknowledged notice in display order.
func Pending(user models.User) []Notice {
	out := []Notice{}
	for _, w := range user.Warnings {
		if !w.Acknowledged {
			out = append(out, fromWarning(w))
		}
	}
	for _, b := range user.Broadcasts {
		if !b.Acknowledged {
			out = append(out, fromBroadcast(b))
		}
	}
	return out
}

// Acknowledge marks one notice as read at now and returns the updated user.
// The transition is one-way; the input user is not modified.
func Acknowledge(user models.User, kind Kind, id string, now time.Time) (models.User, error) {
	switch kind {
	case KindWarning:
		warnings := make([]models.Warning, len(user.Warnings))
		copy(warnings, user.Warnings)
		for i := range warnings {
			if warnings[i].ID != id {
				continue
			}
			if warnings[i].Acknowledged {
				return user, ErrAlreadyAcknowledged
			}
			ts := now
			warnings[i].Acknowledged = true
			warnings[i].AcknowledgedAt = &ts
			user.Warnings = warnings
			return user, nil
		}
	case KindBroadcast:
		broadcasts := make([]models.Broadcast, len(user.Broadcasts))
		copy(broadcasts, user.Broadcasts)
		for i := range broadcasts {
			if broadcasts[i].ID != id {
				continue
			}
			if broadcasts[i].Acknowledged {
				return user, ErrAlreadyAcknowledged
			}
			ts := now
			broadcasts[i].Acknowledged = true
			broadcasts[i].AcknowledgedAt = &ts
			user.Broadcasts = broadcasts
			return user, nil
		}
	default:
		return user, ErrUnknownKind
	}
	return user, ErrNotFound
}
