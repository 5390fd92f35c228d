package accumulator

import (
	"time"

	"github.com/davidbmar/transcription-realtime-whisper/internal/token"
)

// snapshotPending deep-copies the current pending buffer into a new
// Snapshot with a TTL and pushes it onto awaitingFinal. A no-op if pending
// is empty — there is nothing to shelve.
func (a *Accumulator) snapshotPending(now time.Time) {
	if len(a.pending) == 0 {
		return
	}
	nowMs := now.UnixMilli()
	snap := token.Snapshot{
		Tokens:    token.Clone(a.pending),
		StartedMs: nowMs,
		ExpiryMs:  nowMs + a.cfg.AwaitingFinalTTLMs,
		SegmentID: a.segmentID,
	}
	a.awaitingFinal = append(a.awaitingFinal, snap)
}

// expireSnapshots runs at the top of every public entry point: while the
// oldest snapshot has passed its TTL, it is auto-committed — a
// high-recall choice that favors over- rather than under-delivery when no
// final ever claims it.
func (a *Accumulator) expireSnapshots(now time.Time) {
	nowMs := now.UnixMilli()
	for len(a.awaitingFinal) > 0 && a.awaitingFinal[0].Expired(nowMs) {
		snap := a.awaitingFinal[0]
		a.awaitingFinal = a.awaitingFinal[1:]

		committed, dm := a.dedup.Filter(a.stable, snap.Texts())
		a.stable = append(a.stable, committed...)
		a.metrics.SnapshotExpiredCommits += uint64(len(committed))
		a.applyDedupMetrics(dm)
	}
}

// forceSegmentBreak backs both the segment timeout trigger and the public
// ForceSegmentBreak operation: shelves pending evidence rather than
// dropping it, then rolls the segment counters.
func (a *Accumulator) forceSegmentBreak(now time.Time) {
	a.snapshotPending(now)
	a.pending = a.pending[:0]

	a.segmentID++
	nowMs := now.UnixMilli()
	a.segmentStartedMs = &nowMs
	a.metrics.SegmentRolls++
}
