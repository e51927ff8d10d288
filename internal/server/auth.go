package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	sessionCookieName = "memorybook_session"
	sessionDuration   = 7 * 24 * time.Hour
)

// sessionStore holds login tokens in memory. Tokens do not survive a restart.
type sessionStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]time.Time)}
}

// create generates a random token, stores it, and returns it.
func (s *sessionStore) create() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.tokens[token] = time.Now().Add(sessionDuration)
	s.mu.Unlock()
	return token, nil
}

// valid reports whether token exists and has not expired. Expired tokens are
// dropped.
func (s *sessionStore) valid(token string) bool {
	s.mu.RLock()
	exp, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		s.delete(token)
		return false
	}
	return true
}

func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// authMiddleware enforces the password gate. A valid session cookie or HTTP
// Basic Auth with the password lets the request through. Unauthenticated
// browser navigation is redirected to /login; API calls get 401.
// An empty password disables the gate.
func authMiddleware(password string, sessions *sessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if password == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Check session cookie
			if c, err := r.Cookie(sessionCookieName); err == nil {
				if sessions.valid(c.Value) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 2. Fallback: HTTP Basic Auth (for scripts and API clients)
			if _, pass, ok := r.BasicAuth(); ok {
				if subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 3. Not authenticated: redirect browser navigation to /login,
			//    return 401 for the JSON API.
			accept := r.Header.Get("Accept")
			isAPI := strings.HasPrefix(r.URL.Path, "/api/")
			if !isAPI && (accept == "" || acceptsHTML(accept)) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="memorybook"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

// acceptsHTML reports whether an Accept header admits an HTML response.
func acceptsHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		switch strings.TrimSpace(mediaType) {
		case "text/html", "text/*", "*/*":
			return true
		}
	}
	return false
}
