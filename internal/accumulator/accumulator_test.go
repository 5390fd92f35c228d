package accumulator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/davidbmar/transcription-realtime-whisper/internal/clock"
)

// newTestAccumulator builds an Accumulator against a Fake clock starting at
// the Unix epoch, with the documented defaults, mirroring the `acc` pytest
// fixture in the ported test suite.
func newTestAccumulator() (*Accumulator, *clock.Fake) {
	fake := clock.NewFake(time.Unix(0, 0))
	cfg := DefaultConfig()
	cfg.Clock = fake.Func()
	return New(cfg), fake
}

func containsWord(text, word string) bool {
	for _, w := range strings.Fields(text) {
		if w == word {
			return true
		}
	}
	return false
}

func TestCountingLateFinalRescue(t *testing.T) {
	a, clk := newTestAccumulator()

	countTokens := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	const window = 3
	var cur []string

	for _, w := range countTokens {
		cur = append(cur, w)
		for i := 0; i < 3; i++ {
			wnd := cur
			if len(wnd) > window {
				wnd = wnd[len(wnd)-window:]
			}
			a.AddPartialAt(strings.Join(wnd, " "), clk.Now())
			clk.Advance(300 * time.Millisecond)
		}
		clk.Advance(200 * time.Millisecond)
	}

	clk.Advance(1500 * time.Millisecond)
	a.AddPartialAt("eight nine ten", clk.Now())

	clk.Advance(3 * time.Second)
	ev := a.AddFinalAt("one two three four five six seven eight", clk.Now())

	for _, w := range []string{"one", "two", "three", "four", "five", "six", "seven", "eight"} {
		assert.True(t, containsWord(ev.StableText, w), "missing word %q in stable text %q", w, ev.StableText)
	}
}

func TestLateFinalAfterTimeoutAndMissingMiddle(t *testing.T) {
	a, clk := newTestAccumulator()

	nums := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten", "eleven", "twelve"}
	const window = 4
	var buf []string

	for _, w := range nums {
		buf = append(buf, w)
		for i := 0; i < 2; i++ {
			wnd := buf
			if len(wnd) > window {
				wnd = wnd[len(wnd)-window:]
			}
			a.AddPartialAt(strings.Join(wnd, " "), clk.Now())
			clk.Advance(350 * time.Millisecond)
		}
		clk.Advance(250 * time.Millisecond)
	}

	clk.Advance(2500 * time.Millisecond)
	a.AddFinalAt("one two three four five six seven eight", clk.Now())

	clk.Advance(2 * time.Second)
	a.AddFinalAt("eleven twelve", clk.Now())

	st := a.StableText()
	for _, w := range []string{"nine", "ten", "eleven", "twelve"} {
		assert.True(t, containsWord(st, w), "missing word %q in stable text %q", w, st)
	}
}

func TestSnapshotExpiryCommitsTokens(t *testing.T) {
	a, clk := newTestAccumulator()

	a.AddPartialAt("alpha beta gamma", clk.Now())
	clk.Advance(300 * time.Millisecond)
	a.AddPartialAt("beta gamma delta", clk.Now())
	clk.Advance(300 * time.Millisecond)

	clk.Advance(12 * time.Second)
	a.AddPartialAt("gamma delta", clk.Now())

	clk.Advance(6 * time.Second)
	a.AddPartialAt("epsilon", clk.Now())

	st := a.StableText()
	assert.True(t, containsWord(st, "gamma"))
	assert.True(t, containsWord(st, "delta"))

	m := a.GetMetrics()
	assert.GreaterOrEqual(t, m.SnapshotExpiredCommits, uint64(2))
}

func TestKConfirmationPromotion(t *testing.T) {
	a, clk := newTestAccumulator()

	for i := 0; i < 3; i++ {
		a.AddPartialAt("hello world", clk.Now())
		clk.Advance(300 * time.Millisecond)
	}

	st := a.StableText()
	assert.True(t, containsWord(st, "hello"))
	assert.True(t, containsWord(st, "world"))
}

func TestTTimeoutPromotion(t *testing.T) {
	a, clk := newTestAccumulator()

	a.AddPartialAt("alpha beta", clk.Now())
	clk.Advance(500 * time.Millisecond)

	clk.Advance(1500 * time.Millisecond)
	a.AddPartialAt("beta gamma", clk.Now())

	st := a.StableText()
	assert.True(t, containsWord(st, "alpha"))
}

func TestEmptyFinalHandling(t *testing.T) {
	a, clk := newTestAccumulator()

	a.AddPartialAt("testing one two three", clk.Now())
	clk.Advance(500 * time.Millisecond)

	ev := a.AddFinalAt("", clk.Now())

	assert.True(t, ev.IsFinal)
}

func TestDisplayEventMetadata(t *testing.T) {
	a, clk := newTestAccumulator()

	a.AddPartialAt("hello world", clk.Now())
	ev := a.BuildDisplayEvent(false)

	assert.NotEmpty(t, ev.StableText + ev.PartialSuffix)
	assert.Equal(t, "display", ev.Type)
	assert.GreaterOrEqual(t, ev.Metadata.PendingTokens, 0)
	assert.GreaterOrEqual(t, ev.Metadata.AwaitingSnapshots, 0)
	assert.GreaterOrEqual(t, ev.Metadata.StableWordCount, 0)
}

func TestResetClearsState(t *testing.T) {
	a, clk := newTestAccumulator()

	a.AddPartialAt("hello world", clk.Now())
	clk.Advance(300 * time.Millisecond)
	a.AddPartialAt("hello world", clk.Now())

	assert.NotEmpty(t, a.StableText())

	a.Reset()

	assert.Empty(t, a.StableText())
	assert.Equal(t, int64(0), a.segmentID)
	assert.Equal(t, Metrics{}, a.GetMetrics())
}

func TestClockRegressionClamped(t *testing.T) {
	a, clk := newTestAccumulator()

	clk.Advance(5 * time.Second)
	a.AddPartialAt("hello", clk.Now())

	// A timestamp earlier than the last observed reading must not move the
	// accumulator's notion of time backwards: now = max(now, last_now).
	regressed := clk.Now().Add(-2 * time.Second)
	ev := a.AddPartialAt("hello world", regressed)

	assert.Equal(t, "display", ev.Type)
	assert.Equal(t, int64(5000), a.lastNowMs)
}
