package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"classquiz/internal/models"
	"classquiz/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	codec           *security.SessionCodec
	sessionDuration time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(codec *security.SessionCodec, sessionDuration time.Duration) *Middleware {
	return &Middleware{codec: codec, sessionDuration: sessionDuration}
}

// RequireAuth is middleware that requires a valid session cookie
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := m.SessionFromRequest(r)
		if session == nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// RequireTeacher is middleware that requires a session with the teacher flag
func (m *Middleware) RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if session == nil || !session.Teacher {
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// SessionFromRequest decodes the session cookie, returning nil when the
// cookie is absent or fails verification
func (m *Middleware) SessionFromRequest(r *http.Request) *models.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	session, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// SaveSession re-issues the session cookie. Handlers call this after
// mutating the session bag (login, quiz start, submission).
func (m *Middleware) SaveSession(w http.ResponseWriter, r *http.Request, session *models.Session) {
	token, err := m.codec.Issue(*session)
	if err != nil {
		log.Printf("Failed to issue session token: %v", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, token, time.Now().Add(m.sessionDuration)))
}

// ClearSession removes the session cookie
func (m *Middleware) ClearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
