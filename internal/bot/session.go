package bot

import "sync"

// ConvState is the explicit registration/login conversation state. One
// session per requester; anything outside a flow sits at StateIdle.
type ConvState int

const (
	StateIdle ConvState = iota
	StateRegisterName
	StateRegisterUsername
	StateRegisterPassword
	StateLoginUsername
	StateLoginPassword
)

type Session struct {
	State    ConvState
	FullName string
	Username string
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[int64]*Session)}
}

// Get returns the requester's session, creating an idle one if needed.
func (r *sessionRegistry) Get(userID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		r.sessions[userID] = s
	}
	return s
}

// Reset drops the session, abandoning any half-finished flow.
func (r *sessionRegistry) Reset(userID int64) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}
