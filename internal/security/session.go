package security

import (
	"errors"
	"net/http"
	"time"

	"classquiz/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
)

// sessionClaims wraps the session bag in JWT claims
type sessionClaims struct {
	Session models.Session `json:"session"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies the client-side session cookie. The whole
// session bag travels in the cookie, HMAC-signed, so no server-side session
// store is needed.
type SessionCodec struct {
	secret   []byte
	lifetime time.Duration
}

// NewSessionCodec creates a codec with the given signing secret and session
// lifetime
func NewSessionCodec(secret string, lifetime time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), lifetime: lifetime}
}

// Issue signs the session bag into a token string
func (c *SessionCodec) Issue(session models.Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a token and returns the session bag it carries
func (c *SessionCodec) Decode(tokenString string) (*models.Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims.Session, nil
}

// IsSecureRequest determines if the request is over HTTPS, either directly
// or behind a reverse proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with proper security flags
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that removes the session cookie
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
