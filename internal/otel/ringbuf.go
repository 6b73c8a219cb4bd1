package otel

import (
	"strings"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 512

// RingBuffer is a fixed-size circular buffer of Events, oldest overwritten
// first. Goroutine-safe.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // write position
	count int
}

// NewRingBuffer creates a ring buffer with the given capacity.
// Non-positive sizes use DefaultRingSize.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{buf: make([]Event, size)}
}

// Push adds an event. The Extra map is copied so callers may reuse theirs.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		cp := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			cp[k] = v
		}
		e.Extra = cp
	}
	r.mu.Lock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Snapshot returns all buffered events, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLocked(r.count)
}

// Last returns up to n of the most recent events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.count {
		n = r.count
	}
	return r.lastLocked(n)
}

func (r *RingBuffer) lastLocked(n int) []Event {
	if n == 0 {
		return nil
	}
	size := len(r.buf)
	out := make([]Event, n)
	start := (r.next - n + size) % size
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%size]
	}
	return out
}

// Session returns the buffered events carrying the given search session
// token, oldest first.
func (r *RingBuffer) Session(sid string) []Event {
	var out []Event
	for _, e := range r.Snapshot() {
		if e.SID == sid {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Stats counts buffered events per subsystem (the part of the kind before
// the dot) and, separately, error/warn events under "errors".
func (r *RingBuffer) Stats() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Snapshot() {
		sub, _, _ := strings.Cut(string(e.Kind), ".")
		counts[sub]++
		if e.IsError() {
			counts["errors"]++
		}
	}
	return counts
}
