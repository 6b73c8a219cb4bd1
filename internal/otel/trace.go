package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled gates per-message trace events in the UI loop.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("DISHTIP_TRACE") != "")
}

// TraceEnabled reports whether message tracing is on.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled overrides the environment, e.g. from the config file.
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
