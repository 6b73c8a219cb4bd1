// Package label assigns short, randomized display tags to dishes.
//
// Tags are drawn from a fixed vocabulary without repeating until every tag
// has been used once, at which point the used set resets and rotation
// continues.
package label

import (
	"math/rand"
	"time"
)

// DefaultVocabulary is the set of price-impression tags shown next to dishes.
var DefaultVocabulary = []string{
	"worth every cent",
	"great value",
	"fair price",
	"a little pricey",
	"budget friendly",
	"treat yourself",
}

// Next picks a label from vocab that is not in used. When every label has
// been used, the cycle resets and the pick is made from the full vocabulary.
// Returns the label and the updated used set; the input set is not modified.
// Returns "" and an empty set if vocab is empty.
func Next(vocab []string, used map[string]bool, rng *rand.Rand) (string, map[string]bool) {
	if len(vocab) == 0 {
		return "", map[string]bool{}
	}

	available := make([]string, 0, len(vocab))
	for _, v := range vocab {
		if !used[v] {
			available = append(available, v)
		}
	}

	next := make(map[string]bool, len(vocab))
	if len(available) == 0 {
		available = append(available, vocab...)
	} else {
		for k := range used {
			next[k] = true
		}
	}

	picked := available[rng.Intn(len(available))]
	next[picked] = true
	return picked, next
}

// Rotator owns the running used set for one search session.
// Not safe for concurrent use; a session is driven from one goroutine.
type Rotator struct {
	vocab []string
	used  map[string]bool
	rng   *rand.Rand
}

// NewRotator creates a Rotator over vocab. A nil rng is seeded from the clock.
// Duplicate vocabulary entries are collapsed.
func NewRotator(vocab []string, rng *rand.Rand) *Rotator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	seen := make(map[string]bool, len(vocab))
	uniq := make([]string, 0, len(vocab))
	for _, v := range vocab {
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}
	return &Rotator{
		vocab: uniq,
		used:  map[string]bool{},
		rng:   rng,
	}
}

// Next returns the next label in the rotation.
func (r *Rotator) Next() string {
	var l string
	l, r.used = Next(r.vocab, r.used, r.rng)
	return l
}

// Assign returns n labels, one per item, in order.
func (r *Rotator) Assign(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = r.Next()
	}
	return labels
}

// Reset clears the used set. Called when a new search session begins.
func (r *Rotator) Reset() {
	r.used = map[string]bool{}
}

// Used returns the number of labels consumed in the current cycle.
func (r *Rotator) Used() int {
	return len(r.used)
}

// Size returns the vocabulary size.
func (r *Rotator) Size() int {
	return len(r.vocab)
}
