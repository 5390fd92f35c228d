package accumulator

import (
	"time"

	"github.com/davidbmar/transcription-realtime-whisper/internal/token"
	"github.com/davidbmar/transcription-realtime-whisper/internal/tokenizer"
)

// alignAndUpdate reconciles the current pending buffer against a freshly
// tokenized partial by longest-common prefix. Tokens in the shared prefix
// get their confirmation bumped; the revised tail is dropped and replaced
// with fresh Tokens for whatever the partial now says instead.
func (a *Accumulator) alignAndUpdate(currentTokens []string, now time.Time) {
	prevTexts := token.Texts(a.pending)
	l := tokenizer.LCPLen(prevTexts, currentTokens)

	for i := 0; i < l; i++ {
		a.pending[i].Confirm(now)
	}

	a.pending = a.pending[:l]

	for _, text := range currentTokens[l:] {
		a.pending = append(a.pending, token.New(text, now))
	}
}

// promotionReason distinguishes why a pending token was marked ready, for
// metrics attribution only — it does not affect which tokens are
// committed.
type promotionReason int

const (
	reasonStability promotionReason = iota
	reasonFlush
)

// promoteLeftmostReady walks pending from the front, promoting
// K-confirmed or T-timed-out tokens. The walk stops at the first blocked
// token so that later tokens can never be promoted ahead of an earlier
// one still waiting, preserving commit order.
//
// A token counts toward tokens_committed_by_stability/_flush as soon as
// it is marked for promotion, regardless of whether the Deduplicator
// later drops it from the actual commit.
func (a *Accumulator) promoteLeftmostReady(now time.Time) {
	var batch []string
	var reasons []promotionReason

	for len(a.pending) > 0 {
		t := a.pending[0]
		if t.ConfirmationCount >= a.cfg.StabilityThreshold {
			batch = append(batch, t.Text)
			reasons = append(reasons, reasonStability)
			a.pending = a.pending[1:]
			continue
		}
		ageMs := now.Sub(t.FirstSeen).Milliseconds()
		if ageMs >= a.cfg.ForcedFlushMs {
			batch = append(batch, t.Text)
			reasons = append(reasons, reasonFlush)
			a.pending = a.pending[1:]
			continue
		}
		break
	}

	if len(batch) == 0 {
		return
	}

	for _, r := range reasons {
		switch r {
		case reasonStability:
			a.metrics.TokensCommittedByStability++
		case reasonFlush:
			a.metrics.TokensCommittedByFlush++
		}
	}

	committed, dm := a.dedup.Filter(a.stable, batch)
	a.stable = append(a.stable, committed...)
	a.applyDedupMetrics(dm)
}
