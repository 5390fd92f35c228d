package accumulator

import "github.com/davidbmar/transcription-realtime-whisper/internal/dedup"

// Metrics is a read-only snapshot of the accumulator's observability
// counters. GetMetrics returns a copy so callers (e.g. the internal/metrics
// Prometheus adapter) cannot mutate accumulator state.
type Metrics struct {
	TotalPartials              uint64
	TotalFinals                uint64
	TokensCommittedByStability uint64
	TokensCommittedByFinal     uint64
	TokensCommittedByFlush     uint64
	SnapshotExpiredCommits     uint64
	OrphanRescues              uint64
	LateFinalHits              uint64
	SegmentRolls               uint64
	DedupFullBlocks            uint64
	DedupPartialOverlaps       uint64
	DedupTokensRemoved         uint64
}

// applyDedupMetrics folds a dedup.Metrics result (from one Filter call)
// into the accumulator's running counters.
func (a *Accumulator) applyDedupMetrics(m dedup.Metrics) {
	a.metrics.DedupFullBlocks += uint64(m.FullBlocks)
	a.metrics.DedupPartialOverlaps += uint64(m.PartialOverlaps)
	a.metrics.DedupTokensRemoved += uint64(m.TokensRemoved)
}

// GetMetrics returns a snapshot of the current counters.
func (a *Accumulator) GetMetrics() Metrics {
	return a.metrics
}
