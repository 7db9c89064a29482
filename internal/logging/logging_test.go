package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	msg    string
	err    error
	extras map[string]interface{}
}

type fakeReporter struct{ reports []captured }

func (f *fakeReporter) Report(msg string, err error, extras map[string]interface{}) {
	f.reports = append(f.reports, captured{msg: msg, err: err, extras: extras})
}

func TestRollbarHandler_ForwardsOnlyErrors(t *testing.T) {
	var buf bytes.Buffer
	rep := &fakeReporter{}
	log := slog.New(NewRollbarHandler(slog.NewTextHandler(&buf, nil), rep)).With("component", "store")

	log.Info("store connected")
	log.Error("store write failed", "err", errors.New("boom"), "key", "users")

	require.Len(t, rep.reports, 1)
	assert.Equal(t, "store write failed", rep.reports[0].msg)
	assert.EqualError(t, rep.reports[0].err, "boom")
	assert.Equal(t, "users", rep.reports[0].extras["key"])
	assert.Equal(t, "store", rep.reports[0].extras["component"])
	assert.Contains(t, buf.String(), "store connected")
	assert.Contains(t, buf.String(), "store write failed")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Env: "production"}).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
