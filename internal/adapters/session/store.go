// Package session implements in-memory conversation storage with idle
// expiry. Appends are serialized per session; unrelated sessions do not
// contend on a shared lock.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tidegate/askdocs/internal/domain/entities"
)

type record struct {
	mu           sync.Mutex
	history      []entities.ChatMessage
	createdAt    time.Time
	lastAccessed time.Time
	dropped      bool // set under mu when the sweeper removes the session
}

// Store keeps per-session conversation history in memory.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*record
	maxHistory int // conversation turns; history is capped at twice this
	now        func() time.Time
}

// NewStore creates a session store keeping up to maxHistory turns of context.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &Store{
		sessions:   make(map[string]*record),
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// GetOrCreate returns the id of a live session, refreshing its access time,
// or creates a new session. An empty id yields a fresh UUID.
func (s *Store) GetOrCreate(id string) string {
	now := s.now()

	s.mu.RLock()
	rec, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		rec.mu.Lock()
		live := !rec.dropped
		if live {
			rec.lastAccessed = now
		}
		rec.mu.Unlock()
		if live {
			return id
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.sessions[id] = &record{createdAt: now, lastAccessed: now}
		log.Printf("[INFO] Created session %s", id)
	}
	return id
}

// Append adds a turn to the session, creating the session if needed. The
// history is trimmed to the most recent 2*maxHistory messages.
func (s *Store) Append(id, role, content string) {
	now := s.now()
	msg := entities.ChatMessage{Role: role, Content: content, Timestamp: now}

	for {
		s.mu.Lock()
		rec, ok := s.sessions[id]
		if !ok {
			rec = &record{createdAt: now, lastAccessed: now}
			s.sessions[id] = rec
			log.Printf("[INFO] Created session %s", id)
		}
		s.mu.Unlock()

		rec.mu.Lock()
		if rec.dropped {
			// The sweeper removed this session between the map lookup and
			// taking the record lock; retry against a fresh record.
			rec.mu.Unlock()
			continue
		}
		rec.history = append(rec.history, msg)
		if limit := s.maxHistory * 2; len(rec.history) > limit {
			rec.history = rec.history[len(rec.history)-limit:]
		}
		rec.lastAccessed = now
		rec.mu.Unlock()
		return
	}
}

// History returns a copy of the session's turns, oldest first.
func (s *Store) History(id string) []entities.ChatMessage {
	s.mu.RLock()
	rec, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]entities.ChatMessage, len(rec.history))
	copy(out, rec.history)
	return out
}

// ExpireOlderThan removes sessions idle longer than ttl and reports the count.
func (s *Store) ExpireOlderThan(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, rec := range s.sessions {
		rec.mu.Lock()
		if now.Sub(rec.lastAccessed) > ttl {
			rec.dropped = true
			delete(s.sessions, id)
			expired++
		}
		rec.mu.Unlock()
	}
	if expired > 0 {
		log.Printf("[INFO] Expired %d idle sessions", expired)
	}
	return expired
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
