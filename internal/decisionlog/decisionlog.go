// Package decisionlog emits one structured record per admission
// decision so a load-test run can be replayed against the server log.
package decisionlog

import (
	"log/slog"
	"sync/atomic"
)

// Decision categorizes what the pipeline decided.
type Decision string

const (
	DecisionGate    Decision = "gate_rejection"
	DecisionInject  Decision = "injected_error"
	DecisionSuccess Decision = "success"
	DecisionAdmin   Decision = "admin"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger installs the destination logger. Defaults to slog.Default.
func SetLogger(l *slog.Logger) { logger.Store(l) }

// Log emits one decision record.
func Log(d Decision, msg string, fields map[string]any) {
	l := logger.Load()
	if l == nil {
		l = slog.Default()
	}
	attrs := make([]any, 0, 2+2*len(fields))
	attrs = append(attrs, "decision", string(d))
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l.Info(msg, attrs...)
}
