// Package token defines the data entities the accumulator reconciles:
// individual lexemes with stability metadata, and the snapshots of those
// lexemes shelved across a segment break while a late final is awaited.
package token

import "time"

// Token is a single lexeme (word or punctuation) produced past the
// longest-common-prefix boundary of a partial. It is mutated only by the
// pending buffer manager (confirmation bump, LastSeen touch) and is
// destroyed on promotion, on LCP-drop replacement, or on snapshot
// eviction — it never outlives exactly one of pending/awaitingFinal.
type Token struct {
	Text              string
	ConfirmationCount uint32
	FirstSeen         time.Time
	LastSeen          time.Time
}

// New creates a freshly-seen Token with ConfirmationCount 1.
func New(text string, now time.Time) Token {
	return Token{
		Text:              text,
		ConfirmationCount: 1,
		FirstSeen:         now,
		LastSeen:          now,
	}
}

// Confirm bumps the confirmation counter on repeated sighting in a partial.
func (t *Token) Confirm(now time.Time) {
	t.ConfirmationCount++
	t.LastSeen = now
}

// Snapshot is an ordered sequence of Tokens captured from the pending
// buffer at a segment break, held until a late final claims some or all
// of it or its TTL expires. Mutated only by the reconciler, which may
// prefix-trim Tokens when a final's overlap rescues a leading run.
type Snapshot struct {
	Tokens    []Token
	StartedMs int64
	ExpiryMs  int64
	SegmentID int64
}

// Texts returns the token text slice, used throughout reconciliation where
// only the lexemes (not their stability metadata) matter.
func (s Snapshot) Texts() []string {
	out := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		out[i] = t.Text
	}
	return out
}

// Expired reports whether the snapshot's TTL has elapsed as of nowMs.
func (s Snapshot) Expired(nowMs int64) bool {
	return s.ExpiryMs <= nowMs
}

// TimedText is a timestamped partial-history entry, retained only as
// auxiliary diagnostic context — the reconciler does not consult it for
// correctness (see the accumulator package's RecentPartials).
type TimedText struct {
	TsMs   int64
	Tokens []string
}

// Clone deep-copies a Token slice, used when snapshotting pending so later
// mutation of the live pending buffer cannot alias the shelved copy.
func Clone(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	return out
}

// Texts extracts the text field from a Token slice, in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
