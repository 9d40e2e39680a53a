package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	sessionCookieName      = "stylemirror_session"
	sessionDuration        = 24 * time.Hour
	sessionCleanupInterval = time.Hour
)

// Session represents a browser session
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"` // bearer token for non-cookie clients
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StoredSession is the database representation of a session
type StoredSession struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionRepository persists sessions across restarts. Implementations may be
// nil, in which case sessions are memory-only.
type SessionRepository interface {
	Save(ctx context.Context, id, token string, createdAt, expiresAt time.Time) error
	Get(ctx context.Context, sessionID string) (*StoredSession, error)
	GetByToken(ctx context.Context, token string) (*StoredSession, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionManager handles session creation and validation
type SessionManager struct {
	secret   []byte
	sessions map[string]*Session
	repo     SessionRepository
	stop     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager with optional persistence.
func NewSessionManager(secret string, repo SessionRepository) *SessionManager {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "stylemirror-dev-secret-change-in-production"
	}
	sm := &SessionManager{
		secret:   []byte(secret),
		sessions: make(map[string]*Session),
		repo:     repo,
		stop:     make(chan struct{}),
	}
	if repo != nil {
		go sm.cleanupLoop()
	}
	return sm
}

// Stop halts the background cleanup goroutine.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stop) })
}

func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if count, err := sm.repo.DeleteExpired(ctx); err != nil {
				log.Printf("Failed to delete expired sessions: %v", err)
			} else if count > 0 {
				log.Printf("Deleted %d expired sessions", count)
			}
			cancel()
		}
	}
}

// CreateSession creates a new session
func (sm *SessionManager) CreateSession() (*Session, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}
	sessionID := base64.URLEncoding.EncodeToString(idBytes)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}

	session := &Session{
		ID:        sessionID,
		Token:     base64.URLEncoding.EncodeToString(tokenBytes),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(sessionDuration),
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	// Persistence is best-effort; the in-memory session is authoritative.
	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sm.repo.Save(ctx, session.ID, session.Token, session.CreatedAt, session.ExpiresAt); err != nil {
			log.Printf("Failed to persist session: %v", err)
		}
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	session, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if ok {
		// Check if session has expired
		if time.Now().After(session.ExpiresAt) {
			go sm.DeleteSession(sessionID)
			return nil
		}
		return session
	}

	// Fall back to the database after a restart.
	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stored, err := sm.repo.Get(ctx, sessionID)
		if err != nil || stored == nil {
			return nil
		}
		session = &Session{
			ID:        stored.ID,
			Token:     stored.Token,
			CreatedAt: stored.CreatedAt,
			ExpiresAt: stored.ExpiresAt,
		}
		sm.mu.Lock()
		sm.sessions[sessionID] = session
		sm.mu.Unlock()
		return session
	}

	return nil
}

// GetSessionByToken retrieves a session by its bearer token. The token is
// the only credential bearer clients hold; the session ID alone must not
// authenticate a request.
func (sm *SessionManager) GetSessionByToken(token string) *Session {
	if token == "" {
		return nil
	}

	sm.mu.RLock()
	var match *Session
	for _, session := range sm.sessions {
		if session.Token == token {
			match = session
			break
		}
	}
	sm.mu.RUnlock()

	if match != nil {
		if time.Now().After(match.ExpiresAt) {
			go sm.DeleteSession(match.ID)
			return nil
		}
		return match
	}

	// Fall back to the database after a restart.
	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stored, err := sm.repo.GetByToken(ctx, token)
		if err != nil || stored == nil {
			return nil
		}
		session := &Session{
			ID:        stored.ID,
			Token:     stored.Token,
			CreatedAt: stored.CreatedAt,
			ExpiresAt: stored.ExpiresAt,
		}
		sm.mu.Lock()
		sm.sessions[session.ID] = session
		sm.mu.Unlock()
		return session
	}

	return nil
}

// DeleteSession removes a session
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if sm.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sm.repo.Delete(ctx, sessionID); err != nil {
			log.Printf("Failed to delete persisted session: %v", err)
		}
	}
}

// SetSessionCookie sets the session cookie on the response
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	// Sign the session ID
	signature := sm.signData(session.ID)
	cookieValue := session.ID + "." + signature

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from a request
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	// Try cookie first
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		parts := strings.SplitN(cookie.Value, ".", 2)
		if len(parts) == 2 {
			sessionID := parts[0]
			signature := parts[1]
			if sm.verifySignature(sessionID, signature) {
				if session := sm.GetSession(sessionID); session != nil {
					return session
				}
			}
		}
	}

	// Try Authorization header. The bearer credential is the session token,
	// not the session ID.
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if session := sm.GetSessionByToken(token); session != nil {
			return session
		}
	}

	return nil
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SessionData is a helper struct for JSON responses
type SessionData struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// ToJSON returns the session data for JSON response
func (s *Session) ToJSON() SessionData {
	return SessionData{
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	}
}

// MarshalJSON implements json.Marshaler (excludes sensitive fields)
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToJSON())
}
