package label

import (
	"math/rand"
	"testing"
)

func TestNextSkipsUsedLabels(t *testing.T) {
	vocab := []string{"a", "b", "c"}
	rng := rand.New(rand.NewSource(1))

	used := map[string]bool{"a": true, "b": true}
	got, next := Next(vocab, used, rng)
	if got != "c" {
		t.Fatalf("only c is available, got %q", got)
	}
	if len(next) != 3 || !next["a"] || !next["b"] || !next["c"] {
		t.Errorf("updated set = %v, want {a,b,c}", next)
	}
	if len(used) != 2 {
		t.Error("input set must not be modified")
	}
}

func TestNextResetsWhenExhausted(t *testing.T) {
	vocab := []string{"a", "b"}
	rng := rand.New(rand.NewSource(1))

	got, next := Next(vocab, map[string]bool{"a": true, "b": true}, rng)
	if got != "a" && got != "b" {
		t.Fatalf("unexpected label %q", got)
	}
	if len(next) != 1 || !next[got] {
		t.Errorf("after reset the set should hold only the pick, got %v", next)
	}
}

func TestNextEmptyVocabulary(t *testing.T) {
	got, next := Next(nil, map[string]bool{"a": true}, rand.New(rand.NewSource(1)))
	if got != "" || len(next) != 0 {
		t.Errorf("Next(nil) = %q, %v", got, next)
	}
}

func TestAssignLengthAndNoRepeatWithinCycle(t *testing.T) {
	for _, n := range []int{0, 1, 5, 6, 7, 12, 25} {
		r := NewRotator(DefaultVocabulary, rand.New(rand.NewSource(int64(n))))
		labels := r.Assign(n)
		if len(labels) != n {
			t.Fatalf("Assign(%d) returned %d labels", n, len(labels))
		}

		size := r.Size()
		for start := 0; start < n; start += size {
			end := start + size
			if end > n {
				end = n
			}
			seen := map[string]bool{}
			for _, l := range labels[start:end] {
				if seen[l] {
					t.Errorf("n=%d: duplicate %q within cycle %v", n, l, labels[start:end])
				}
				seen[l] = true
			}
		}
	}
}

func TestAssignFullCycleIsPermutation(t *testing.T) {
	r := NewRotator(DefaultVocabulary, rand.New(rand.NewSource(42)))
	labels := r.Assign(len(DefaultVocabulary))

	seen := map[string]bool{}
	for _, l := range labels {
		seen[l] = true
	}
	for _, v := range DefaultVocabulary {
		if !seen[v] {
			t.Errorf("label %q missing from full cycle %v", v, labels)
		}
	}
}

func TestEveryLabelReachable(t *testing.T) {
	r := NewRotator(DefaultVocabulary, rand.New(rand.NewSource(7)))
	counts := map[string]int{}
	for i := 0; i < 600; i++ {
		counts[r.Next()]++
	}
	for _, v := range DefaultVocabulary {
		// Every cycle emits each label exactly once.
		if counts[v] != 100 {
			t.Errorf("label %q emitted %d times, want 100", v, counts[v])
		}
	}
}

func TestResetClearsUsed(t *testing.T) {
	r := NewRotator([]string{"a", "b", "c"}, rand.New(rand.NewSource(3)))
	r.Assign(2)
	if r.Used() != 2 {
		t.Fatalf("Used() = %d, want 2", r.Used())
	}
	r.Reset()
	if r.Used() != 0 {
		t.Errorf("Used() after Reset = %d, want 0", r.Used())
	}
}

func TestNewRotatorCollapsesDuplicates(t *testing.T) {
	r := NewRotator([]string{"a", "a", "b"}, nil)
	if r.Size() != 2 {
		t.Errorf("Size() = %d, want 2", r.Size())
	}
}
