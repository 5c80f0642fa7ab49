package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_NewSessionGetsID(t *testing.T) {
	s := NewStore(10)

	id := s.GetOrCreate("")
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())

	// Reusing the id returns the same session.
	assert.Equal(t, id, s.GetOrCreate(id))
	assert.Equal(t, 1, s.Len())
}

func TestGetOrCreate_ExplicitIDReuse(t *testing.T) {
	s := NewStore(10)
	id := s.GetOrCreate("client-chosen")
	assert.Equal(t, "client-chosen", id)
}

func TestAppendAndHistory(t *testing.T) {
	s := NewStore(10)
	id := s.GetOrCreate("")

	s.Append(id, "user", "hello")
	s.Append(id, "assistant", "hi there")

	history := s.History(id)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.False(t, history[0].Timestamp.IsZero())
}

func TestHistory_UnknownSession(t *testing.T) {
	s := NewStore(10)
	assert.Empty(t, s.History("nope"))
}

func TestAppend_CapsHistory(t *testing.T) {
	s := NewStore(3) // cap = 6 messages
	id := s.GetOrCreate("")

	for i := 0; i < 10; i++ {
		s.Append(id, "user", fmt.Sprintf("msg %d", i))
	}

	history := s.History(id)
	require.Len(t, history, 6)
	assert.Equal(t, "msg 4", history[0].Content) // oldest kept
	assert.Equal(t, "msg 9", history[5].Content)
}

func TestExpireOlderThan(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	s.now = func() time.Time { return base }

	old := s.GetOrCreate("old")
	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	fresh := s.GetOrCreate("fresh")

	expired := s.ExpireOlderThan(base.Add(time.Hour+time.Minute), time.Hour)
	assert.Equal(t, 1, expired)
	assert.Empty(t, s.History(old))
	assert.Equal(t, fresh, s.GetOrCreate(fresh))
	assert.Equal(t, 1, s.Len())
}

func TestAppend_SurvivesConcurrentExpiry(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	s.now = func() time.Time { return base }
	id := s.GetOrCreate("racing")

	// Reproduce the interleaving where a writer has already looked up the
	// record when the sweeper removes the session.
	s.mu.RLock()
	stale := s.sessions[id]
	s.mu.RUnlock()

	expired := s.ExpireOlderThan(base.Add(2*time.Hour), time.Hour)
	require.Equal(t, 1, expired)

	stale.mu.Lock()
	dropped := stale.dropped
	stale.mu.Unlock()
	assert.True(t, dropped)

	// The append must land on a live record, not the orphaned one.
	s.Append(id, "user", "still here")
	history := s.History(id)
	require.Len(t, history, 1)
	assert.Equal(t, "still here", history[0].Content)
	assert.Empty(t, stale.history)
}

func TestAppend_ConcurrentSessions(t *testing.T) {
	s := NewStore(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := s.GetOrCreate(fmt.Sprintf("s%d", i))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Append(id, "user", "m")
			}
		}(id)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.Len(t, s.History(fmt.Sprintf("s%d", i)), 20)
	}
}
