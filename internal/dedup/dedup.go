// Package dedup filters full-duplicate and boundary-overlap token
// sequences before they are committed to the accumulator's stable
// transcript, absorbing the repetition artifacts upstream ASR engines
// produce on sliding-window re-recognition.
package dedup

import "strings"

// Metrics accumulates the counters the Deduplicator's callers attribute to
// dedup.Filter, so a single filter call can report which branch fired.
type Metrics struct {
	FullBlocks      int
	PartialOverlaps int
	TokensRemoved   int
}

// Deduplicator filters candidate token sequences against recently
// committed stable text.
type Deduplicator struct {
	Enabled    bool
	WindowSize int
}

// New creates a Deduplicator with the given enablement and minimum
// recent-stable window size.
func New(enabled bool, windowSize int) *Deduplicator {
	return &Deduplicator{Enabled: enabled, WindowSize: windowSize}
}

// Filter returns the (possibly shortened) candidate tokens actually safe
// to commit given stable, the transcript committed so far, plus the
// Metrics describing what was removed and why.
//
// Full-duplicate block: if cand is no longer than the scanned recent
// window and appears as a contiguous (case-folded) subsequence of it,
// nothing is committed.
//
// Boundary overlap: otherwise, the largest k such that the last k tokens
// of the recent window equal (case-folded) the first k tokens of cand is
// trimmed from the front of cand.
func (d *Deduplicator) Filter(stable []string, cand []string) ([]string, Metrics) {
	if !d.Enabled || len(cand) == 0 || len(stable) == 0 {
		return cand, Metrics{}
	}

	window := d.WindowSize
	if n := 3 * len(cand); n > window {
		window = n
	}
	recent := stable
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	candLower := foldAll(cand)
	recentLower := foldAll(recent)

	if len(candLower) <= len(recentLower) {
		for i := 0; i <= len(recentLower)-len(candLower); i++ {
			if equalSlices(recentLower[i:i+len(candLower)], candLower) {
				return []string{}, Metrics{FullBlocks: 1, TokensRemoved: len(cand)}
			}
		}
	}

	bestOverlap := 0
	maxK := len(candLower)
	if len(recentLower) < maxK {
		maxK = len(recentLower)
	}
	for k := 1; k <= maxK; k++ {
		if equalSlices(recentLower[len(recentLower)-k:], candLower[:k]) {
			bestOverlap = k
		}
	}
	if bestOverlap > 0 {
		return cand[bestOverlap:], Metrics{PartialOverlaps: 1, TokensRemoved: bestOverlap}
	}

	return cand, Metrics{}
}

func foldAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
