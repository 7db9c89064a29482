package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirTarget_PutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	target, err := NewDirTarget(dir)
	require.NoError(t, err)

	ctx := context.Background()
	name := Name(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, "schoolhub-backup-20260302T083000Z.json", name)

	loc, err := target.Put(ctx, name, []byte(`{"users":[]}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), loc)

	got, err := target.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, string(got))

	_, err = os.Stat(loc + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDirTarget_RejectsPathNames(t *testing.T) {
	target, err := NewDirTarget(t.TempDir())
	require.NoError(t, err)

	_, err = target.Put(context.Background(), "../escape.json", []byte("x"))
	assert.Error(t, err)
	_, err = target.Get(context.Background(), "..")
	assert.Error(t, err)
}

func TestOpen_Disabled(t *testing.T) {
	target, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	_, err = target.Put(context.Background(), "x.json", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
