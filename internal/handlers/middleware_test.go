package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classquiz/internal/models"
	"classquiz/internal/security"
)

func newTestMiddleware() *Middleware {
	codec := security.NewSessionCodec("test-secret", time.Hour)
	return NewMiddleware(codec, time.Hour)
}

// requestWithSession builds a request carrying a signed session cookie
func requestWithSession(t *testing.T, m *Middleware, session models.Session) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	w := httptest.NewRecorder()
	m.SaveSession(w, r, &session)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SaveSession() set no cookie")
	}
	r.AddCookie(cookies[0])
	return r
}

func TestRequireAuth(t *testing.T) {
	m := newTestMiddleware()

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if session == nil {
			t.Error("no session in context inside the protected handler")
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid session passes", func(t *testing.T) {
		r := requestWithSession(t, m, models.Session{Account: "s001", Name: "Student One"})
		w := httptest.NewRecorder()

		handler(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("missing cookie redirects to login", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/home", nil)
		w := httptest.NewRecorder()

		handler(w, r)
		if w.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q, want /login", loc)
		}
	})

	t.Run("forged cookie redirects to login", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/home", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
		w := httptest.NewRecorder()

		handler(w, r)
		if w.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
		}
	})
}

func TestRequireTeacher(t *testing.T) {
	m := newTestMiddleware()

	handler := m.RequireTeacher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("teacher session passes", func(t *testing.T) {
		r := requestWithSession(t, m, models.Session{Account: "t001", Teacher: true})
		w := httptest.NewRecorder()

		handler(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("student session is bounced to home", func(t *testing.T) {
		r := requestWithSession(t, m, models.Session{Account: "s001"})
		w := httptest.NewRecorder()

		handler(w, r)
		if w.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
		}
		if loc := w.Header().Get("Location"); loc != "/home" {
			t.Errorf("Location = %q, want /home", loc)
		}
	})
}

func TestClearSession(t *testing.T) {
	m := newTestMiddleware()

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	m.ClearSession(w, r)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("ClearSession() set %d cookies, want 1", len(cookies))
	}
	if cookies[0].Name != SessionCookieName || cookies[0].MaxAge != -1 {
		t.Errorf("delete cookie = %+v, want expired %s", cookies[0], SessionCookieName)
	}
}
