package nav

import (
	"sync"
	"time"
)

// Store holds all user sessions, keyed by user id. The store lock guards only
// map insertion and eviction; per-user serialization comes from each
// session's own lock, so one user's slow delivery never blocks another's
// navigation.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	now       func() time.Time
	idleAfter time.Duration
}

// NewStore creates a session store. idleAfter controls EvictIdle; zero
// disables eviction.
func NewStore(idleAfter time.Duration) *Store {
	return &Store{
		sessions:  make(map[int64]*Session),
		now:       time.Now,
		idleAfter: idleAfter,
	}
}

// Get returns the session for userID, creating an empty one on first
// interaction.
func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	s, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		st.touch(s)
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[userID]; ok {
		s.mu.Lock()
		s.lastSeen = st.now()
		s.mu.Unlock()
		return s
	}
	s = &Session{UserID: userID, lastSeen: st.now()}
	st.sessions[userID] = s
	return s
}

func (st *Store) touch(s *Session) {
	s.mu.Lock()
	s.lastSeen = st.now()
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle drops sessions idle for longer than the configured window and
// returns how many were removed. A fresh session is created on the user's
// next interaction, which lands them back at the root menu.
func (st *Store) EvictIdle() int {
	if st.idleAfter <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idleAfter)

	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartEvictor runs EvictIdle on the given interval until stop is closed.
func (st *Store) StartEvictor(interval time.Duration, stop <-chan struct{}) {
	if st.idleAfter <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.EvictIdle()
			case <-stop:
				return
			}
		}
	}()
}
