package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
)

func TestOpenGetClose(t *testing.T) {
	r := NewRegistry()
	cfg := accumulator.DefaultConfig()

	s := r.Open(cfg)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Close(s.ID))
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseUnknownSession(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Close("does-not-exist"), ErrNotFound)
}

func TestSessionDoSerializesAccess(t *testing.T) {
	r := NewRegistry()
	s := r.Open(accumulator.DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func(a *accumulator.Accumulator) {
				a.AddPartial("hello world")
			})
		}()
	}
	wg.Wait()

	s.Do(func(a *accumulator.Accumulator) {
		m := a.GetMetrics()
		assert.Equal(t, uint64(20), m.TotalPartials)
	})
}

func TestEachVisitsAllSessions(t *testing.T) {
	r := NewRegistry()
	r.Open(accumulator.DefaultConfig())
	r.Open(accumulator.DefaultConfig())

	seen := 0
	r.Each(func(*Session) { seen++ })
	assert.Equal(t, 2, seen)
}
