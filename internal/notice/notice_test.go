package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub/backend/internal/models"
)

func userWithNotices() models.User {
	return models.User{
		ID: "u1",
		Warnings: []models.Warning{
			{ID: "w1", Message: "first"},
			{ID: "w2", Message: "second"},
		},
		Broadcasts: []models.Broadcast{
			{ID: "b1", Message: "field trip", From: "t1", FromName: "Ms. Adams"},
		},
	}
}

func TestAcknowledgementOrdering(t *testing.T) {
	user := userWithNotices()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var shown []string
	for {
		n, ok := Next(user)
		if !ok {
			break
		}
		shown = append(shown, n.ID)
		var err error
		user, err = Acknowledge(user, n.Kind, n.ID, now)
		require.NoError(t, err)
		require.Less(t, len(shown), 10)
	}

	assert.Equal(t, []string{"w1", "w2", "b1"}, shown)
	for _, w := range user.Warnings {
		assert.True(t, w.Acknowledged)
		require.NotNil(t, w.AcknowledgedAt)
		assert.Equal(t, now, *w.AcknowledgedAt)
	}
	assert.True(t, user.Broadcasts[0].Acknowledged)
	assert.Empty(t, Pending(user))
}

func TestBroadcastWaitsForWarnings(t *testing.T) {
	user := userWithNotices()
	user.Warnings[0].Acknowledged = true

	n, ok := Next(user)
	require.True(t, ok)
	assert.Equal(t, KindWarning, n.Kind)
	assert.Equal(t, "w2", n.ID)

	pending := Pending(user)
	require.Len(t, pending, 2)
	assert.Equal(t, KindBroadcast, pending[1].Kind)
	assert.Equal(t, "Ms. Adams", pending[1].From)
}

func TestAcknowledge_IsOneWay(t *testing.T) {
	user := userWithNotices()
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	user, err := Acknowledge(user, KindWarning, "w1", first)
	require.NoError(t, err)

	again, err := Acknowledge(user, KindWarning, "w1", first.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)
	assert.Equal(t, first, *again.Warnings[0].AcknowledgedAt)
}

func TestAcknowledge_DoesNotMutateInput(t *testing.T) {
	user := userWithNotices()
	_, err := Acknowledge(user, KindBroadcast, "b1", time.Now())
	require.NoError(t, err)
	assert.False(t, user.Broadcasts[0].Acknowledged)
}

func TestAcknowledge_Errors(t *testing.T) {
	user := userWithNotices()

	_, err := Acknowledge(user, KindWarning, "nope", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Acknowledge(user, Kind("memo"), "w1", time.Now())
	assert.ErrorIs(t, err, ErrUnknownKind)
}
