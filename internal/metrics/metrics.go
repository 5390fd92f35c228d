// Package metrics declares the process-wide Prometheus instruments for the
// transcript accumulator service and republishes internal/accumulator
// counter snapshots into them. The accumulator package itself stays free of
// any Prometheus dependency; this package is the only place that bridges
// the two.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "accumulator_sessions_active",
		Help: "Currently open accumulator sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_sessions_total",
		Help: "Total accumulator sessions opened",
	})

	PartialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_partials_total",
		Help: "Total partial hypotheses processed",
	})

	FinalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_finals_total",
		Help: "Total per-utterance finals processed",
	})

	TokensCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accumulator_tokens_committed_total",
		Help: "Tokens committed to stable text, by promotion reason",
	}, []string{"reason"})

	SnapshotExpiredCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_snapshot_expired_commits_total",
		Help: "Tokens auto-committed because their awaiting-final snapshot's TTL elapsed with no matching final",
	})

	OrphanRescues = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_orphan_rescues_total",
		Help: "Tokens rescued from a snapshot's dropped left edge during late-final reconciliation",
	})

	LateFinalHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_late_final_hits_total",
		Help: "Finals whose reconciliation against a prior segment's snapshot rescued at least one orphaned token",
	})

	SegmentRolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_segment_rolls_total",
		Help: "Forced segment breaks (segment timeout, empty final, or explicit break)",
	})

	DedupFullBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_dedup_full_blocks_total",
		Help: "Candidate token batches blocked entirely as a full duplicate of the recent stable window",
	})

	DedupPartialOverlaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_dedup_partial_overlaps_total",
		Help: "Candidate token batches trimmed for a boundary overlap with the recent stable window",
	})

	DedupTokensRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accumulator_dedup_tokens_removed_total",
		Help: "Tokens dropped by the deduplicator before commit",
	})

	PendingTokens = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "accumulator_pending_tokens",
		Help: "Unconfirmed tokens currently buffered in the last-observed session",
	})

	AwaitingSnapshots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "accumulator_awaiting_snapshots",
		Help: "Segment snapshots currently held for late-final reconciliation in the last-observed session",
	})
)

// reasonLabels mirrors the accumulator.Metrics promotion-reason counters
// onto the tokens_committed vec's "reason" label.
const (
	reasonStability = "stability"
	reasonFlush     = "flush"
	reasonFinal     = "final"
)

// lastBySession holds the last-observed cumulative accumulator.Metrics
// snapshot per session ID, so that monotonic Prometheus counters can be
// advanced by the delta since that session's previous Observe call rather
// than double-counting, and so one session's counts can never be attributed
// to another's.
var (
	lastMu     sync.Mutex
	lastBySess = map[string]accumulator.Metrics{}
)

// Observe republishes a snapshot of one session's accumulator.Metrics into
// the package's process-wide Prometheus counters. Safe to call from any
// goroutine for any number of concurrent sessions; the per-session delta
// bookkeeping is guarded internally.
func Observe(sessionID string, m accumulator.Metrics) {
	lastMu.Lock()
	d := lastBySess[sessionID]
	lastBySess[sessionID] = m
	lastMu.Unlock()

	PartialsTotal.Add(float64(m.TotalPartials - d.TotalPartials))
	FinalsTotal.Add(float64(m.TotalFinals - d.TotalFinals))

	TokensCommitted.WithLabelValues(reasonStability).Add(float64(m.TokensCommittedByStability - d.TokensCommittedByStability))
	TokensCommitted.WithLabelValues(reasonFlush).Add(float64(m.TokensCommittedByFlush - d.TokensCommittedByFlush))
	TokensCommitted.WithLabelValues(reasonFinal).Add(float64(m.TokensCommittedByFinal - d.TokensCommittedByFinal))

	SnapshotExpiredCommits.Add(float64(m.SnapshotExpiredCommits - d.SnapshotExpiredCommits))
	OrphanRescues.Add(float64(m.OrphanRescues - d.OrphanRescues))
	LateFinalHits.Add(float64(m.LateFinalHits - d.LateFinalHits))
	SegmentRolls.Add(float64(m.SegmentRolls - d.SegmentRolls))
	DedupFullBlocks.Add(float64(m.DedupFullBlocks - d.DedupFullBlocks))
	DedupPartialOverlaps.Add(float64(m.DedupPartialOverlaps - d.DedupPartialOverlaps))
	DedupTokensRemoved.Add(float64(m.DedupTokensRemoved - d.DedupTokensRemoved))
}

// ObserveDisplay sets the point-in-time gauges from the metadata of a
// DisplayEvent returned by an accumulator operation. Unlike Observe, these
// are gauges (not per-session cumulative counters): the last call across
// any session wins, matching a single-pane "current load" reading.
func ObserveDisplay(meta accumulator.DisplayMetadata) {
	PendingTokens.Set(float64(meta.PendingTokens))
	AwaitingSnapshots.Set(float64(meta.AwaitingSnapshots))
}

// Forget drops a session's delta-tracking state. Callers should invoke this
// when a session closes so lastBySess does not grow unbounded.
func Forget(sessionID string) {
	lastMu.Lock()
	delete(lastBySess, sessionID)
	lastMu.Unlock()
}
