package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenMap map[string][]string

func (t tokenMap) TokensForUsers(_ context.Context, ids []string) []string {
	var out []string
	for _, id := range ids {
		out = append(out, t[id]...)
	}
	return out
}

type recordingSender struct {
	tokens []string
	msg    Message
	calls  int
}

func (r *recordingSender) Send(_ context.Context, tokens []string, msg Message) error {
	r.calls++
	r.tokens = tokens
	r.msg = msg
	return nil
}

func TestNotifier_NotifyUsers(t *testing.T) {
	sender := &recordingSender{}
	n := New(tokenMap{"u1": {"t1", "t2"}, "u2": {"t3"}}, sender)

	require.NoError(t, n.NotifyUsers(context.Background(), []string{"u1", "u2"}, Message{Title: "Broadcast"}))
	assert.Equal(t, []string{"t1", "t2", "t3"}, sender.tokens)
	assert.Equal(t, "Broadcast", sender.msg.Title)

	require.NoError(t, n.NotifyUsers(context.Background(), []string{"nobody"}, Message{}))
	assert.Equal(t, 1, sender.calls)
}

func TestRetry(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, time.Hour, func() error { return errors.New("fail") })
	assert.ErrorIs(t, err, context.Canceled)
}
