package view

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ChartHandle is a live chart owned by a Session. Once released it must not
// be rendered again.
type ChartHandle struct {
	ID       string `json:"id"`
	Slot     Slot   `json:"slot"`
	Chart    Chart  `json:"chart"`
	released atomic.Bool
}

func (h *ChartHandle) Released() bool { return h.released.Load() }

func (h *ChartHandle) release() { h.released.Store(true) }

// Session owns the charts shown to one viewer. Placing a chart in an occupied
// slot releases the previous one first, and Reset clears every slot before a
// new result is drawn.
type Session struct {
	ID string

	mu         sync.Mutex
	handles    map[Slot]*ChartHandle
	generation int
	lastUsed   time.Time
	closed     bool
}

func NewSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		handles:  make(map[Slot]*ChartHandle),
		lastUsed: time.Now(),
	}
}

// Place stores c in its slot, releasing whatever was there.
func (s *Session) Place(c Chart) *ChartHandle {
	h := &ChartHandle{ID: uuid.NewString(), Slot: c.Slot, Chart: c}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		h.release()
		return h
	}
	if prev, ok := s.handles[c.Slot]; ok {
		prev.release()
	}
	s.handles[c.Slot] = h
	s.lastUsed = time.Now()
	return h
}

// Handle returns the live chart in slot, or nil.
func (s *Session) Handle(slot Slot) *ChartHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[slot]
}

// Handles lists live charts in display order.
func (s *Session) Handles() []*ChartHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ChartHandle
	for _, slot := range slotOrder {
		if h, ok := s.handles[slot]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Reset releases every chart and starts a new generation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAll()
	s.generation++
	s.lastUsed = time.Now()
}

// Generation counts resets, so a page can tell whether it is current.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Close releases everything; later Place calls return released handles.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAll()
	s.closed = true
}

func (s *Session) releaseAll() {
	for slot, h := range s.handles {
		h.release()
		delete(s.handles, slot)
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// ── Session store ──────────────────────────────────────

// SessionStore keeps one Session per viewer id, bounded in size. Idle
// sessions are closed by Sweep; the least recently used one is evicted when
// the store is full.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	idle     time.Duration
}

func NewSessionStore(max int, idle time.Duration) *SessionStore {
	if max < 1 {
		max = 1
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		max:      max,
		idle:     idle,
	}
}

// Get returns the session for id, creating one (with a fresh id) when id is
// unknown.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok && id != "" {
		s.touch()
		return s
	}

	if len(st.sessions) >= st.max {
		st.evictOldest()
	}
	s := NewSession()
	st.sessions[s.ID] = s
	return s
}

func (st *SessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range st.sessions {
		t := s.idleSince()
		if oldestID == "" || t.Before(oldest) {
			oldestID, oldest = id, t
		}
	}
	if s, ok := st.sessions[oldestID]; ok {
		s.Close()
		delete(st.sessions, oldestID)
	}
}

// Sweep closes sessions idle for longer than the store's idle window and
// returns how many were removed.
func (st *SessionStore) Sweep() int {
	if st.idle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-st.idle)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			s.Close()
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
