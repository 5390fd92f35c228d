package accumulator

import (
	"strings"
	"time"

	"github.com/davidbmar/transcription-realtime-whisper/internal/token"
	"github.com/davidbmar/transcription-realtime-whisper/internal/tokenizer"
)

const maxTail = 64

// reconcileContext is the chosen best-matching context built for a final.
// snapIdx is -1 when the no-snapshot context won.
type reconcileContext struct {
	ctx       []string
	snapIdx   int
	lenStTail int
	lenSnap   int
	lenPend   int
	overlap   int
}

// buildContextForFinal searches stable-tail ∪ snapshot ∪ current-pending
// candidates (one per snapshot, newest first, plus the no-snapshot
// variant) and returns the one with the greatest suffix/prefix overlap
// against finalTokens.
//
// Ties are broken by preferring a snapshot match over no-snapshot (to
// allow orphan rescue), then by newest snapshot: snapshots are scanned
// newest-to-oldest and only a strictly greater overlap replaces the
// current best, so among equal-overlap snapshots the first (newest) one
// examined wins; the no-snapshot context is only adopted if it strictly
// beats whatever a snapshot already achieved.
func (a *Accumulator) buildContextForFinal(finalTokens []string) reconcileContext {
	stTail := tailSlice(a.stable, maxTail)
	pendTxt := token.Texts(a.pending)

	best := reconcileContext{snapIdx: -1}

	for i := len(a.awaitingFinal) - 1; i >= 0; i-- {
		snap := a.awaitingFinal[i]
		snapTxt := snap.Texts()
		ctx := concatStrings(stTail, snapTxt, pendTxt)
		m := longestSuffixPrefix(ctx, finalTokens)
		if m > best.overlap {
			best = reconcileContext{
				ctx:       ctx,
				snapIdx:   i,
				lenStTail: len(stTail),
				lenSnap:   len(snapTxt),
				lenPend:   len(pendTxt),
				overlap:   m,
			}
		}
	}

	ctxNoSnap := concatStrings(stTail, pendTxt)
	m0 := longestSuffixPrefix(ctxNoSnap, finalTokens)
	if m0 > best.overlap {
		best = reconcileContext{
			ctx:       ctxNoSnap,
			snapIdx:   -1,
			lenStTail: len(stTail),
			lenSnap:   0,
			lenPend:   len(pendTxt),
			overlap:   m0,
		}
	}

	return best
}

// longestSuffixPrefix returns the largest k in [0, min(len(context),
// len(final))] such that the last k tokens of context (lowercased) equal
// the first k tokens of final (lowercased). Search descends from the max
// so the first match found is also the largest.
func longestSuffixPrefix(context, final []string) int {
	maxM := len(context)
	if len(final) < maxM {
		maxM = len(final)
	}
	for m := maxM; m >= 1; m-- {
		if equalFold(context[len(context)-m:], final[:m]) {
			return m
		}
	}
	return 0
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

func tailSlice(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func concatStrings(parts ...[]string) []string {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]string, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// addFinal is the reconciler. It locates the best-matching context,
// rescues orphaned snapshot tokens the final's sliding window dropped,
// and appends whatever suffix of the final was not already accounted
// for.
func (a *Accumulator) addFinal(text string, now time.Time) DisplayEvent {
	a.metrics.TotalFinals++
	a.ensureSegmentStarted(now)
	a.expireSnapshots(now)

	finalTokens := tokenizer.Tokenize(text)
	if len(finalTokens) == 0 {
		a.log.Debug("empty final", "segment_id", a.segmentID)
		a.forceSegmentBreak(now)
		return a.BuildDisplayEvent(true)
	}

	best := a.buildContextForFinal(finalTokens)
	m := best.overlap
	overlapStart := len(best.ctx) - m

	if best.snapIdx >= 0 && best.lenSnap > 0 {
		a.rescueOrphans(best, overlapStart)
	}

	toAppend := finalTokens[m:]
	if len(toAppend) > 0 {
		committed, dm := a.dedup.Filter(a.stable, toAppend)
		a.stable = append(a.stable, committed...)
		a.metrics.TokensCommittedByFinal += uint64(len(committed))
		a.applyDedupMetrics(dm)
	}

	a.pending = a.pending[:0]
	a.segmentID++
	nowMs := now.UnixMilli()
	a.segmentStartedMs = &nowMs

	a.log.Debug("final reconciled", "segment_id", a.segmentID, "overlap", m, "snapshot_match", best.snapIdx >= 0)
	return a.BuildDisplayEvent(true)
}

// rescueOrphans handles tokens in the chosen snapshot strictly to the
// left of the matched overlap region: words the final omitted (the ASR
// engine's sliding window dropped them) but that appeared in partials.
// They are dequeued from the front of the snapshot and promoted to
// stable.
func (a *Accumulator) rescueOrphans(best reconcileContext, overlapStart int) {
	snapStart := best.lenStTail
	snapEnd := best.lenStTail + best.lenSnap - 1
	leftEnd := min(snapEnd, overlapStart-1)

	if leftEnd >= snapStart {
		leftCount := leftEnd - snapStart + 1
		snap := a.awaitingFinal[best.snapIdx]

		orphaned := make([]string, leftCount)
		for i := 0; i < leftCount; i++ {
			orphaned[i] = snap.Tokens[i].Text
		}

		committed, dm := a.dedup.Filter(a.stable, orphaned)
		a.stable = append(a.stable, committed...)
		a.applyDedupMetrics(dm)

		snap.Tokens = snap.Tokens[leftCount:]
		a.awaitingFinal[best.snapIdx] = snap

		if rescued := len(committed); rescued > 0 {
			a.metrics.OrphanRescues += uint64(rescued)
			a.metrics.LateFinalHits++
			a.metrics.TokensCommittedByFinal += uint64(rescued)
		}
	}

	if len(a.awaitingFinal[best.snapIdx].Tokens) == 0 {
		a.awaitingFinal = append(a.awaitingFinal[:best.snapIdx], a.awaitingFinal[best.snapIdx+1:]...)
	}
}
