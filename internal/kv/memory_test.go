package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "user_1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "user_1", []byte(`{"id":"1"}`)))
	value, err := m.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(value))

	require.NoError(t, m.Delete(ctx, "user_1"))
	_, err = m.Get(ctx, "user_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "subjects", []byte(`["Math"]`)))
	require.NoError(t, m.Set(ctx, "subjects", []byte(`["Art"]`)))

	value, err := m.Get(ctx, "subjects")
	require.NoError(t, err)
	assert.Equal(t, `["Art"]`, string(value))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	raw := []byte(`"a"`)
	require.NoError(t, m.Set(ctx, "k", raw))
	raw[1] = 'b'

	value, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(value))
}

func TestMemory_ScanSortedByKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "user_b", []byte(`2`)))
	require.NoError(t, m.Set(ctx, "user_a", []byte(`1`)))
	require.NoError(t, m.Set(ctx, "schedule_a", []byte(`{}`)))

	pairs, err := m.Scan(ctx, "user_")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "user_a", pairs[0].Key)
	assert.Equal(t, "user_b", pairs[1].Key)

	pairs, err = m.Scan(ctx, "nothing_")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
