package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
	"github.com/davidbmar/transcription-realtime-whisper/internal/env"
)

// tuning holds the reconciliation knobs loaded from accumulator.yaml. These
// are values that may eventually move to per-tenant config; for now a YAML
// file keeps them out of env vars, mirroring cmd/gateway/main.go's
// gateway.json tuning file and internal/config/loader.go's YAML idiom.
type tuning struct {
	StabilityThreshold          uint32  `yaml:"stability_threshold"`
	ForcedFlushMs               int64   `yaml:"forced_flush_ms"`
	MaxSegmentSeconds           float64 `yaml:"max_segment_seconds"`
	AwaitingFinalTTLMs          int64   `yaml:"awaiting_final_ttl_ms"`
	PartialHistoryWindowSeconds float64 `yaml:"partial_history_window_seconds"`
	DeduplicationEnabled        *bool   `yaml:"deduplication_enabled"`
	DeduplicationWindowSize     int     `yaml:"deduplication_window_size"`
}

// defaultTuning returns sensible defaults matching accumulator.Config's own
// zero-value resolution, so a missing accumulator.yaml behaves identically
// to an unconfigured accumulator.Config{}.
func defaultTuning() tuning {
	d := accumulator.DefaultConfig()
	return tuning{
		StabilityThreshold:          d.StabilityThreshold,
		ForcedFlushMs:               d.ForcedFlushMs,
		MaxSegmentSeconds:           d.MaxSegmentSeconds,
		AwaitingFinalTTLMs:          d.AwaitingFinalTTLMs,
		PartialHistoryWindowSeconds: d.PartialHistoryWindowSeconds,
		DeduplicationEnabled:        d.DeduplicationEnabled,
		DeduplicationWindowSize:     d.DeduplicationWindowSize,
	}
}

// loadTuning reads path if present, otherwise returns defaults. A malformed
// file is reported but does not abort startup — the server falls back to
// defaults.
func loadTuning(path string) tuning {
	t := defaultTuning()

	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()

	parsed, err := decodeTuning(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "accumulator-server: bad config file %s: %v, using defaults\n", path, err)
		return defaultTuning()
	}
	return parsed
}

func decodeTuning(r io.Reader) (tuning, error) {
	t := defaultTuning()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return tuning{}, err
	}
	return t, nil
}

// toAccumulatorConfig converts tuning plus env-var overrides into the
// accumulator.Config the server will hand to every new session.
func (t tuning) toAccumulatorConfig() accumulator.Config {
	return accumulator.Config{
		StabilityThreshold:          uint32(env.Int("ACCUM_STABILITY_THRESHOLD", int(t.StabilityThreshold))),
		ForcedFlushMs:               int64(env.Int("ACCUM_FORCED_FLUSH_MS", int(t.ForcedFlushMs))),
		MaxSegmentSeconds:           env.Float("ACCUM_MAX_SEGMENT_SECONDS", t.MaxSegmentSeconds),
		AwaitingFinalTTLMs:          int64(env.Int("ACCUM_AWAITING_FINAL_TTL_MS", int(t.AwaitingFinalTTLMs))),
		PartialHistoryWindowSeconds: env.Float("ACCUM_PARTIAL_HISTORY_WINDOW_SECONDS", t.PartialHistoryWindowSeconds),
		DeduplicationEnabled:        dedupOverride(t.DeduplicationEnabled),
		DeduplicationWindowSize:     env.Int("ACCUM_DEDUPLICATION_WINDOW_SIZE", t.DeduplicationWindowSize),
	}
}

func dedupOverride(configured *bool) *bool {
	fallback := true
	if configured != nil {
		fallback = *configured
	}
	resolved := env.Bool("ACCUM_DEDUPLICATION_ENABLED", fallback)
	return &resolved
}
