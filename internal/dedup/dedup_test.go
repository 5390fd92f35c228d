package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterDisabledPassesThrough(t *testing.T) {
	d := New(false, 30)
	cand, m := d.Filter([]string{"the", "cat"}, []string{"the", "cat"})
	assert.Equal(t, []string{"the", "cat"}, cand)
	assert.Equal(t, Metrics{}, m)
}

func TestFilterEmptyInputsPassThrough(t *testing.T) {
	d := New(true, 30)
	cand, m := d.Filter(nil, []string{"hello"})
	assert.Equal(t, []string{"hello"}, cand)
	assert.Equal(t, Metrics{}, m)

	cand, m = d.Filter([]string{"hello"}, nil)
	assert.Equal(t, []string(nil), cand)
	assert.Equal(t, Metrics{}, m)
}

func TestFilterFullDuplicateBlocked(t *testing.T) {
	d := New(true, 30)
	stable := []string{"the", "quick", "brown", "fox"}
	cand, m := d.Filter(stable, []string{"quick", "Brown"})
	assert.Equal(t, []string{}, cand)
	assert.Equal(t, Metrics{FullBlocks: 1, TokensRemoved: 2}, m)
}

func TestFilterBoundaryOverlapTrimmed(t *testing.T) {
	d := New(true, 30)
	stable := []string{"the", "quick", "brown", "fox"}
	cand, m := d.Filter(stable, []string{"brown", "fox", "jumps"})
	assert.Equal(t, []string{"jumps"}, cand)
	assert.Equal(t, Metrics{PartialOverlaps: 1, TokensRemoved: 2}, m)
}

func TestFilterNoOverlapPassesThrough(t *testing.T) {
	d := New(true, 30)
	stable := []string{"the", "quick", "brown", "fox"}
	cand, m := d.Filter(stable, []string{"jumps", "over"})
	assert.Equal(t, []string{"jumps", "over"}, cand)
	assert.Equal(t, Metrics{}, m)
}

func TestFilterWindowSizeWidensForLongCandidates(t *testing.T) {
	d := New(true, 2)
	stable := []string{"one", "two", "three", "four", "five", "six"}
	// WindowSize=2 but cand has 4 tokens, so the scanned window widens to
	// max(2, 3*4)=12, reaching all the way back to "three".
	cand, m := d.Filter(stable, []string{"three", "four", "five", "six"})
	assert.Equal(t, []string{}, cand)
	assert.Equal(t, Metrics{FullBlocks: 1, TokensRemoved: 4}, m)
}
