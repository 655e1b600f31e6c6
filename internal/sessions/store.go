// Package sessions holds volatile, process-lifetime conversational state.
// Unknown session ids are treated leniently: reads return empty values and
// writes implicitly create the session, so caller-supplied ids always work.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/brightside-ai/assistant-backend/internal/model"
)

// session is the stored value: ordered message history plus the latest
// preference payload (replace-on-write).
type session struct {
	messages    []model.ChatMessage
	preferences map[string]interface{}
}

// Store maps opaque session ids to conversational state. A zero ttl keeps
// sessions for the process lifetime; a positive ttl makes the eviction policy
// explicit instead of silently unbounded.
type Store struct {
	// mu serializes read-modify-write cycles so concurrent appends to one
	// session cannot drop messages. go-cache only guards its own map.
	mu  sync.Mutex
	c   *cache.Cache
	ttl time.Duration
}

// New creates a Store. ttl <= 0 disables expiry.
func New(ttl time.Duration) *Store {
	exp := ttl
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		exp = cache.NoExpiration
		cleanup = 0
	}
	return &Store{c: cache.New(exp, cleanup), ttl: ttl}
}

// Create mints a new session with empty history and preferences and returns
// its id. The client id is accepted for symmetry with callers but carries no
// storage meaning.
func (s *Store) Create(clientID string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(id, &session{preferences: map[string]interface{}{}}, cache.DefaultExpiration)
	return id
}

// get returns the session for id, implicitly creating it when create is set.
// Callers must hold mu.
func (s *Store) get(id string, create bool) (*session, bool) {
	if x, found := s.c.Get(id); found {
		return x.(*session), true
	}
	if !create {
		return nil, false
	}
	sess := &session{preferences: map[string]interface{}{}}
	s.c.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

// AddMessage appends msg to the session's history, creating the session when
// the id is unknown.
func (s *Store) AddMessage(id string, msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _ := s.get(id, true)
	sess.messages = append(sess.messages, msg)
	s.c.Set(id, sess, cache.DefaultExpiration)
}

// Messages returns the session's history in insertion order. Unknown ids
// yield an empty list, never an error. The returned slice is a copy.
func (s *Store) Messages(id string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id, false)
	if !ok {
		return []model.ChatMessage{}
	}
	out := make([]model.ChatMessage, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// StorePreferences replaces (never merges) the stored preference payload,
// creating the session when the id is unknown.
func (s *Store) StorePreferences(id string, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _ := s.get(id, true)
	sess.preferences = payload
	s.c.Set(id, sess, cache.DefaultExpiration)
}

// Preferences returns the stored payload, or nil for unknown sessions or
// sessions that never stored one.
func (s *Store) Preferences(id string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id, false)
	if !ok || len(sess.preferences) == 0 {
		return nil
	}
	return sess.preferences
}

// Clear resets history and preferences for a known session; unknown ids are
// a no-op.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.get(id, false)
	if !ok {
		return
	}
	sess.messages = nil
	sess.preferences = map[string]interface{}{}
	s.c.Set(id, sess, cache.DefaultExpiration)
}
