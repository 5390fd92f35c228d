// Package accumulator implements the reconciliation state machine at the
// heart of the transcript accumulator: partial-to-pending alignment,
// K-confirmation/T-timeout promotion, cross-segment snapshot buffering
// with TTL, late-final orphan rescue, and deduplication.
package accumulator

import (
	"log/slog"
	"math"
	"time"

	"github.com/davidbmar/transcription-realtime-whisper/internal/dedup"
	"github.com/davidbmar/transcription-realtime-whisper/internal/token"
	"github.com/davidbmar/transcription-realtime-whisper/internal/tokenizer"
)

// unsetLastNow sentinels lastNowMs before the first clock read, so the
// very first call never spuriously clamps — a Fake clock legitimately
// seeded at or before the Unix epoch must not be treated as a regression.
const unsetLastNow = math.MinInt64

// Accumulator is single-threaded per session: it performs no internal
// synchronization. A caller serving multiple sessions from multiple
// goroutines must serialize calls into each Accumulator itself — see
// internal/session.Session, which owns exactly one per connection.
type Accumulator struct {
	cfg   Config
	dedup *dedup.Deduplicator
	log   *slog.Logger

	stable         []string
	pending        []token.Token
	awaitingFinal  []token.Snapshot
	partialHistory []token.TimedText

	segmentID        int64
	segmentStartedMs *int64
	lastNowMs        int64

	metrics Metrics
}

// New creates an Accumulator. Zero-valued Config fields resolve to their
// documented defaults.
func New(cfg Config) *Accumulator {
	cfg = cfg.withDefaults()
	return &Accumulator{
		cfg:       cfg,
		dedup:     dedup.New(*cfg.DeduplicationEnabled, cfg.DeduplicationWindowSize),
		log:       slog.Default(),
		lastNowMs: unsetLastNow,
	}
}

// now resolves the injected clock and clamps it defensively so the
// accumulator's view of time never moves backwards: now = max(now,
// last_now). The only observable effect of a clock regression is then
// temporary over-retention of pending tokens, never a correctness
// violation.
func (a *Accumulator) now() time.Time {
	return a.clampNow(a.cfg.Clock())
}

func (a *Accumulator) clampNow(t time.Time) time.Time {
	nowMs := t.UnixMilli()
	if nowMs < a.lastNowMs {
		nowMs = a.lastNowMs
		t = time.UnixMilli(nowMs)
	}
	a.lastNowMs = nowMs
	return t
}

func (a *Accumulator) ensureSegmentStarted(now time.Time) {
	if a.segmentStartedMs == nil {
		nowMs := now.UnixMilli()
		a.segmentStartedMs = &nowMs
	}
}

// recordPartialHistory appends to the diagnostic ring and evicts entries
// older than the configured window. The reconciler never consults this —
// it exists only for RecentPartials to surface to diagnostic tooling.
func (a *Accumulator) recordPartialHistory(tokens []string, now time.Time) {
	nowMs := now.UnixMilli()
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	a.partialHistory = append(a.partialHistory, token.TimedText{TsMs: nowMs, Tokens: cp})

	cutoff := nowMs - a.cfg.partialHistoryWindowMs()
	i := 0
	for i < len(a.partialHistory) && a.partialHistory[i].TsMs < cutoff {
		i++
	}
	a.partialHistory = a.partialHistory[i:]
}

// RecentPartials returns up to n of the most recent partial-history
// entries, newest last. Diagnostic only.
func (a *Accumulator) RecentPartials(n int) []token.TimedText {
	if n <= 0 || n >= len(a.partialHistory) {
		out := make([]token.TimedText, len(a.partialHistory))
		copy(out, a.partialHistory)
		return out
	}
	out := make([]token.TimedText, n)
	copy(out, a.partialHistory[len(a.partialHistory)-n:])
	return out
}

// AddPartial processes a partial hypothesis using the current wall clock.
func (a *Accumulator) AddPartial(text string) DisplayEvent {
	return a.addPartial(text, a.now())
}

// AddPartialAt processes a partial hypothesis with an explicit timestamp,
// for deterministic tests.
func (a *Accumulator) AddPartialAt(text string, now time.Time) DisplayEvent {
	return a.addPartial(text, a.clampNow(now))
}

func (a *Accumulator) addPartial(text string, now time.Time) DisplayEvent {
	a.metrics.TotalPartials++
	a.ensureSegmentStarted(now)
	a.expireSnapshots(now)

	curTokens := tokenizer.Tokenize(text)
	a.recordPartialHistory(curTokens, now)
	a.alignAndUpdate(curTokens, now)
	a.promoteLeftmostReady(now)

	if a.segmentStartedMs != nil {
		elapsedMs := now.UnixMilli() - *a.segmentStartedMs
		if elapsedMs >= a.cfg.maxSegmentMs() {
			a.log.Debug("segment timeout", "segment_id", a.segmentID, "elapsed_ms", elapsedMs)
			a.forceSegmentBreak(now)
		}
	}

	a.log.Debug("partial processed", "segment_id", a.segmentID, "pending", len(a.pending), "stable_words", len(a.stable))
	return a.BuildDisplayEvent(false)
}

// AddFinal processes a per-utterance final using the current wall clock.
func (a *Accumulator) AddFinal(text string) DisplayEvent {
	return a.addFinal(text, a.now())
}

// AddFinalAt processes a per-utterance final with an explicit timestamp,
// for deterministic tests.
func (a *Accumulator) AddFinalAt(text string, now time.Time) DisplayEvent {
	return a.addFinal(text, a.clampNow(now))
}

// ForceSegmentBreak shelves the current pending buffer into a snapshot
// and rolls the segment, using the current wall clock.
func (a *Accumulator) ForceSegmentBreak() {
	now := a.now()
	a.ensureSegmentStarted(now)
	a.expireSnapshots(now)
	a.forceSegmentBreak(now)
}

// ForceSegmentBreakAt is ForceSegmentBreak with an explicit timestamp.
func (a *Accumulator) ForceSegmentBreakAt(now time.Time) {
	now = a.clampNow(now)
	a.ensureSegmentStarted(now)
	a.expireSnapshots(now)
	a.forceSegmentBreak(now)
}

// Reset clears all session state. segment_id returns to zero; the
// accumulator is then safe to reuse for a new session.
func (a *Accumulator) Reset() {
	a.stable = nil
	a.pending = nil
	a.awaitingFinal = nil
	a.partialHistory = nil
	a.segmentID = 0
	a.segmentStartedMs = nil
	a.lastNowMs = unsetLastNow
	a.metrics = Metrics{}
}
