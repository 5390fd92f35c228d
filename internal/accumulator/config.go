package accumulator

import (
	"github.com/davidbmar/transcription-realtime-whisper/internal/clock"
)

// BoolPtr returns a pointer to b, a convenience for setting
// Config.DeduplicationEnabled to an explicit false.
func BoolPtr(b bool) *bool { return &b }

// Config holds the reconciliation tunables, all with sensible defaults
// applied by DefaultConfig and by New for any zero-valued field.
type Config struct {
	// StabilityThreshold (K) is the number of consecutive partials a
	// pending token must survive before K-confirmation promotes it.
	StabilityThreshold uint32

	// ForcedFlushMs (T) is the age in milliseconds past which a pending
	// token is force-promoted regardless of confirmation count.
	ForcedFlushMs int64

	// MaxSegmentSeconds triggers a forced segment break once the current
	// segment has run this long.
	MaxSegmentSeconds float64

	// AwaitingFinalTTLMs is the grace window a snapshot survives waiting
	// for a late final before it is auto-committed.
	AwaitingFinalTTLMs int64

	// PartialHistoryWindowSeconds bounds the partial-history ring's
	// retention; it is diagnostic only (see RecentPartials).
	PartialHistoryWindowSeconds float64

	// DeduplicationEnabled toggles the full-duplicate and boundary-overlap
	// filters applied before every commit to stable. A nil pointer means
	// "unset" and resolves to true, since bool's zero value (false) would
	// otherwise be indistinguishable from an explicit opt-out.
	DeduplicationEnabled *bool

	// DeduplicationWindowSize is the minimum number of recent stable words
	// scanned for duplication (see dedup.Deduplicator).
	DeduplicationWindowSize int

	// Clock supplies monotonic time; defaults to clock.Default() (time.Now).
	Clock clock.Func
}

// DefaultConfig returns the reconciliation engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold:          2,
		ForcedFlushMs:               1400,
		MaxSegmentSeconds:           12.0,
		AwaitingFinalTTLMs:          5000,
		PartialHistoryWindowSeconds: 30.0,
		DeduplicationEnabled:        BoolPtr(true),
		DeduplicationWindowSize:     30,
		Clock:                       clock.Default(),
	}
}

// withDefaults fills any zero-valued field with the corresponding default.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StabilityThreshold == 0 {
		c.StabilityThreshold = d.StabilityThreshold
	}
	if c.ForcedFlushMs == 0 {
		c.ForcedFlushMs = d.ForcedFlushMs
	}
	if c.MaxSegmentSeconds == 0 {
		c.MaxSegmentSeconds = d.MaxSegmentSeconds
	}
	if c.AwaitingFinalTTLMs == 0 {
		c.AwaitingFinalTTLMs = d.AwaitingFinalTTLMs
	}
	if c.PartialHistoryWindowSeconds == 0 {
		c.PartialHistoryWindowSeconds = d.PartialHistoryWindowSeconds
	}
	if c.DeduplicationWindowSize == 0 {
		c.DeduplicationWindowSize = d.DeduplicationWindowSize
	}
	if c.DeduplicationEnabled == nil {
		c.DeduplicationEnabled = d.DeduplicationEnabled
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	return c
}

func (c Config) maxSegmentMs() int64 {
	return int64(c.MaxSegmentSeconds * 1000)
}

func (c Config) partialHistoryWindowMs() int64 {
	return int64(c.PartialHistoryWindowSeconds * 1000)
}
