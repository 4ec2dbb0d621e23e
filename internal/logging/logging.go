// Package logging wraps goa.design/clue/log with the narrow logger surface
// the runtime, sidecar host, and HTTP API need, so call sites never import
// clue directly and tests can substitute a no-op implementation.
package logging

import (
	"context"

	"goa.design/clue/log"
)

// Logger is the structured logging surface used throughout the module.
// Key-value pairs follow the (k1, v1, k2, v2, ...) convention: an odd
// trailing key is paired with nil, and non-string keys are dropped.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, err error, keyvals ...any)
}

// ClueLogger delegates to goa.design/clue/log. Configure formatting and
// debug level via log.Context/log.WithFormat/log.WithDebug before use.
type ClueLogger struct{}

// New returns a Logger backed by clue.
func New() Logger { return ClueLogger{} }

// Debug emits a debug-level message.
func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, fields(msg, keyvals)...)
}

// Info emits an info-level message.
func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, fields(msg, keyvals)...)
}

// Warn emits a warning-level message.
func (ClueLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	fielders := []log.Fielder{log.KV{K: "msg", V: msg}, log.KV{K: "severity", V: "warning"}}
	log.Warn(ctx, append(fielders, kvFielders(keyvals)...)...)
}

// Error emits an error-level message with the triggering error attached.
func (ClueLogger) Error(ctx context.Context, msg string, err error, keyvals ...any) {
	log.Error(ctx, err, fields(msg, keyvals)...)
}

func fields(msg string, keyvals []any) []log.Fielder {
	return append([]log.Fielder{log.KV{K: "msg", V: msg}}, kvFielders(keyvals)...)
}

func kvFielders(keyvals []any) []log.Fielder {
	var out []log.Fielder
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		var val any
		if i+1 < len(keyvals) {
			val = keyvals[i+1]
		}
		out = append(out, log.KV{K: key, V: val})
	}
	return out
}
