// Package testutil provides helpers shared by tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
)

// Logger writes to t.Log, so output shows only on failure or with -v.
type Logger struct {
	t testing.TB
}

// NewLogger returns a Logger bound to t.
func NewLogger(t testing.TB) *Logger {
	t.Helper()
	return &Logger{t: t}
}

func (lgr *Logger) Info(ctx context.Context, msg string, kv ...any) {
	lgr.t.Helper()
	lgr.t.Log(fmt.Sprintf("INFO %s %v", msg, kv))
}

func (lgr *Logger) Error(ctx context.Context, msg string, err error, kv ...any) {
	lgr.t.Helper()
	lgr.t.Log(fmt.Sprintf("ERROR %s: %v %v", msg, err, kv))
}
