package otel

import (
	"sync"
	"testing"
)

func TestPushAndSnapshot(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindRetrievalStart, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Count != i {
			t.Errorf("snap[%d].Count=%d, want %d", i, e.Count, i)
		}
	}
}

func TestWrapAround(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 10; i++ {
		r.Push(Event{Kind: KindRetrievalStart, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	for i, e := range snap {
		if want := i + 6; e.Count != want {
			t.Errorf("snap[%d].Count=%d, want %d", i, e.Count, want)
		}
	}
}

func TestLast(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		pushed int
		n      int
		want   []int
	}{
		{"partial", 8, 8, 3, []int{5, 6, 7}},
		{"wrapped", 4, 6, 3, []int{3, 4, 5}},
		{"more than count", 8, 2, 100, []int{0, 1}},
		{"zero", 8, 4, 0, nil},
		{"empty", 8, 0, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			for i := 0; i < tt.pushed; i++ {
				r.Push(Event{Kind: KindRetrievalStart, Count: i})
			}
			got := r.Last(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Last(%d) returned %d events, want %d", tt.n, len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Count != tt.want[i] {
					t.Errorf("got[%d].Count=%d, want %d", i, e.Count, tt.want[i])
				}
			}
		})
	}
}

func TestSessionFilter(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindSessionSelect, SID: "a"})
	r.Push(Event{Kind: KindSessionSelect, SID: "b"})
	r.Push(Event{Kind: KindRetrievalComplete, SID: "a"})
	r.Push(Event{Kind: KindSessionStale, SID: "a"})

	got := r.Session("a")
	if len(got) != 3 {
		t.Fatalf("Session(a) = %d events, want 3", len(got))
	}
	if got[2].Kind != KindSessionStale {
		t.Errorf("last event = %s, want %s", got[2].Kind, KindSessionStale)
	}
}

func TestStats(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindSessionSelect})
	r.Push(Event{Kind: KindSessionApply})
	r.Push(Event{Kind: KindRetrievalStart})
	r.Push(Event{Kind: KindRetrievalError, Level: LevelError})
	r.Push(Event{Kind: KindPlacesError, Level: LevelWarn})

	stats := r.Stats()
	want := map[string]int{"session": 2, "retrieval": 2, "places": 1, "errors": 2}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%q]=%d, want %d", k, stats[k], v)
		}
	}
}

func TestPushCopiesExtra(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"k": 1}
	r.Push(Event{Kind: KindStartup, Extra: extra})
	extra["k"] = 2

	if got := r.Snapshot()[0].Extra["k"]; got != 1 {
		t.Errorf("buffered Extra changed to %v", got)
	}
}

func TestDefaultSize(t *testing.T) {
	if c := NewRingBuffer(0).Cap(); c != DefaultRingSize {
		t.Errorf("Cap()=%d, want %d", c, DefaultRingSize)
	}
}

func TestConcurrentPush(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Push(Event{Kind: KindKeyPress})
				_ = r.Last(5)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len()=%d, want 64", r.Len())
	}
}
