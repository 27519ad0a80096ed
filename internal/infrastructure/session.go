package infrastructure

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"qb_bulkdelete/internal/entities"
)

const stateTTL = 10 * time.Minute

// SessionManager holds the OAuth credential for every connected session,
// keyed by an opaque session id. It also tracks pending OAuth states
// between /auth and /callback.
type SessionManager struct {
	sessions map[string]*entities.Credential
	states   map[string]time.Time
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*entities.Credential),
		states:   make(map[string]time.Time),
	}
}

// Create stores a credential and returns its new session id.
func (sm *SessionManager) Create(cred *entities.Credential) string {
	id := uuid.NewString()
	sm.mu.Lock()
	sm.sessions[id] = cred
	sm.mu.Unlock()
	return id
}

// Get returns the credential for a session id, or nil if none.
func (sm *SessionManager) Get(id string) *entities.Credential {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Replace swaps the stored credential for an existing session. The whole
// pair is replaced in one step so readers never see a stale refresh token
// next to a fresh access token.
func (sm *SessionManager) Replace(id string, cred *entities.Credential) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[id]; ok {
		sm.sessions[id] = cred
	}
}

// Destroy removes a session (logout, or terminal auth failure upstream).
func (sm *SessionManager) Destroy(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// NewState issues a random OAuth state and remembers it until consumed
// or expired.
func (sm *SessionManager) NewState() string {
	state := uuid.NewString()
	sm.mu.Lock()
	sm.states[state] = time.Now().Add(stateTTL)
	sm.mu.Unlock()
	return state
}

// ConsumeState validates and burns a state in one step.
func (sm *SessionManager) ConsumeState(state string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Sweep expired states while we hold the lock
	now := time.Now()
	for s, exp := range sm.states {
		if now.After(exp) {
			delete(sm.states, s)
		}
	}

	exp, ok := sm.states[state]
	if !ok || now.After(exp) {
		return false
	}
	delete(sm.states, state)
	return true
}
