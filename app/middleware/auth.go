package appMiddleware

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

type contextKey string

const SessionKey contextKey = "authSession"

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "tg_session"

// SessionStore keeps auth sessions in memory. Sessions expire after the
// configured idle TTL; every access refreshes the expiry.
type SessionStore struct {
	mu           sync.Mutex
	sessions     *cache.Cache
	ttl          time.Duration
	initialToken string
	now          func() time.Time
}

// NewSessionStore creates a store. New sessions start with initialToken,
// which may be empty.
func NewSessionStore(ttl time.Duration, initialToken string) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		sessions:     cache.New(ttl, ttl/2),
		ttl:          ttl,
		initialToken: initialToken,
		now:          time.Now,
	}
}

// Touch returns the session for id, creating a fresh one when id is
// unknown or expired, and records activity.
func (s *SessionStore) Touch(id string) types.AuthSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session types.AuthSession
	if id != "" {
		if v, ok := s.sessions.Get(id); ok {
			session = v.(types.AuthSession)
		}
	}
	if session.ID == "" {
		session = types.AuthSession{ID: uuid.NewString(), Token: s.initialToken}
	}
	session.LastActivity = s.now()
	s.sessions.Set(session.ID, session, s.ttl)
	return session
}

// Get returns the stored session without refreshing it.
func (s *SessionStore) Get(id string) (types.AuthSession, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return types.AuthSession{}, false
	}
	return v.(types.AuthSession), true
}

// Update applies fn to the stored session and saves the result.
func (s *SessionStore) Update(id string, fn func(*types.AuthSession)) (types.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.sessions.Get(id)
	if !ok {
		return types.AuthSession{}, false
	}
	session := v.(types.AuthSession)
	fn(&session)
	session.LastActivity = s.now()
	s.sessions.Set(id, session, s.ttl)
	return session, true
}
