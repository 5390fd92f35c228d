package accumulator

import (
	"github.com/davidbmar/transcription-realtime-whisper/internal/token"
	"github.com/davidbmar/transcription-realtime-whisper/internal/tokenizer"
)

// DisplayEvent is the outward-facing record produced after every public
// operation. Its transmission and serialization are the transport
// adapter's concern, not the accumulator's — see internal/transport/ws.
type DisplayEvent struct {
	Type          string          `json:"type"`
	StableText    string          `json:"stable_text"`
	PartialSuffix string          `json:"partial_suffix"`
	IsFinal       bool            `json:"is_final"`
	SegmentID     int64           `json:"segment_id"`
	Metadata      DisplayMetadata `json:"metadata"`
}

// DisplayMetadata carries the small set of counts a UI typically renders
// alongside the transcript (e.g. a "listening..." spinner while pending is
// non-empty).
type DisplayMetadata struct {
	PendingTokens     int `json:"pending_tokens"`
	AwaitingSnapshots int `json:"awaiting_snapshots"`
	StableWordCount   int `json:"stable_word_count"`
}

// StableText returns the detokenized authoritative transcript.
func (a *Accumulator) StableText() string {
	return tokenizer.Detokenize(a.stable)
}

// BuildDisplayEvent produces a display event from current state without
// mutating anything — a pure read.
func (a *Accumulator) BuildDisplayEvent(isFinal bool) DisplayEvent {
	return DisplayEvent{
		Type:          "display",
		StableText:    a.StableText(),
		PartialSuffix: tokenizer.Detokenize(token.Texts(a.pending)),
		IsFinal:       isFinal,
		SegmentID:     a.segmentID,
		Metadata: DisplayMetadata{
			PendingTokens:     len(a.pending),
			AwaitingSnapshots: len(a.awaitingFinal),
			StableWordCount:   len(a.stable),
		},
	}
}
