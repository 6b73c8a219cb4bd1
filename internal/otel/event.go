// Package otel records what DishTip does as a JSONL event stream.
//
// Events are typed structs serialized one per line. The Logger writes them
// asynchronously through a buffered channel; an optional RingBuffer keeps the
// most recent ones in memory for the debug overlay.
package otel

import (
	"time"

	json "github.com/goccy/go-json"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Search session lifecycle
	KindSessionSelect EventKind = "session.select"
	KindSessionApply  EventKind = "session.apply"
	KindSessionStale  EventKind = "session.stale"
	KindSessionReset  EventKind = "session.reset"

	// Backend retrieval
	KindRetrievalStart    EventKind = "retrieval.start"
	KindRetrievalComplete EventKind = "retrieval.complete"
	KindRetrievalError    EventKind = "retrieval.error"
	KindRetrievalCancel   EventKind = "retrieval.cancel"
	KindInfoComplete      EventKind = "info.complete"
	KindInfoError         EventKind = "info.error"

	// Autocomplete
	KindPlacesQuery EventKind = "places.query"
	KindPlacesError EventKind = "places.error"

	// UI
	KindReveal   EventKind = "ui.reveal"
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace (DISHTIP_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is the universal record. Every field except Kind and Time is
// optional.
type Event struct {
	Time    time.Time      `json:"t"`
	Level   Level          `json:"level,omitempty"`
	Kind    EventKind      `json:"kind"`
	Comp    string         `json:"comp,omitempty"` // "session", "retrieval", "places", "ui", "main"
	RunID   string         `json:"run,omitempty"`  // one per process
	SID     string         `json:"sid,omitempty"`  // search session token
	PlaceID string         `json:"place_id,omitempty"`
	Dur     time.Duration  `json:"-"`
	DurMs   float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count   int            `json:"count,omitempty"`
	Query   string         `json:"query,omitempty"`
	Status  int            `json:"status,omitempty"` // HTTP status when known
	Err     string         `json:"err,omitempty"`
	Msg     string         `json:"msg,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// IsError reports whether the event is error or warn level.
func (e Event) IsError() bool {
	return e.Level == LevelError || e.Level == LevelWarn
}
