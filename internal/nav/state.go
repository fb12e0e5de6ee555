package nav

import (
	"sync"
	"time"
)

// Session is one user's cursor into the menu tree. The path is mutated only
// by the engine while the session lock is held, so events from the same user
// are processed strictly in arrival order while other users proceed in
// parallel.
type Session struct {
	UserID int64

	mu       sync.Mutex
	path     []string
	lastSeen time.Time
}

// Path returns a copy of the current path.
func (s *Session) Path() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.path))
	copy(out, s.path)
	return out
}

// Depth returns the current menu depth.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.path)
}

// lock-held mutators; callers in this package hold s.mu.

func (s *Session) push(label string) {
	s.path = append(s.path, label)
}

func (s *Session) pop() {
	if len(s.path) > 0 {
		s.path = s.path[:len(s.path)-1]
	}
}

func (s *Session) reset() {
	s.path = s.path[:0]
}

func (s *Session) snapshot() []string {
	out := make([]string, len(s.path))
	copy(out, s.path)
	return out
}
