package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"classquiz/internal/models"
	"classquiz/internal/service"
)

// AuthHandler handles login, logout and password changes
type AuthHandler struct {
	authService *service.AuthService
	middleware  *Middleware
	templates   *template.Template
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, middleware *Middleware, templates *template.Template) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		middleware:  middleware,
		templates:   templates,
	}
}

// Home redirects to the dashboard or the login page depending on the session
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := h.middleware.SessionFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if session.Teacher {
		http.Redirect(w, r, "/teacher", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// ShowLogin displays the login form
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, "")
}

// Login checks credentials and issues the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	account := r.FormValue("account")
	password := r.FormValue("password")

	session, err := h.authService.Login(account, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.renderLogin(w, "Wrong account or password.")
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Login failed", err)
		return
	}

	h.middleware.SaveSession(w, r, session)

	if session.Teacher {
		http.Redirect(w, r, "/teacher", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.middleware.ClearSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowChangePassword displays the password change form
func (h *AuthHandler) ShowChangePassword(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	h.renderChangePassword(w, session, "", "")
}

// ChangePassword validates and applies a password change, replicating it to
// the mirror
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	err := h.authService.ChangePassword(
		session.Account,
		r.FormValue("current_password"),
		r.FormValue("new_password"),
		r.FormValue("confirm_password"),
	)
	switch {
	case err == nil:
		h.renderChangePassword(w, session, "Password updated. Use the new password next time you log in.", "")
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrWrongPassword):
		h.renderChangePassword(w, session, "", userMessage(err))
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Password change failed", err)
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, errMsg string) {
	data := map[string]interface{}{
		"Title": "Login",
		"Error": errMsg,
	}
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering login template", err)
	}
}

func (h *AuthHandler) renderChangePassword(w http.ResponseWriter, session *models.Session, message, errMsg string) {
	data := map[string]interface{}{
		"Title":   "Change Password",
		"Session": session,
		"Message": message,
		"Error":   errMsg,
	}
	if err := h.templates.ExecuteTemplate(w, "change_password.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering change password template", err)
	}
}

// userMessage maps validation sentinels to form-friendly text
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return "Please fill in the current and new passwords."
	case errors.Is(err, service.ErrPasswordMismatch):
		return "The two new passwords do not match."
	case errors.Is(err, service.ErrPasswordTooShort):
		return "The new password needs at least 4 characters."
	case errors.Is(err, service.ErrWrongPassword):
		return "The current password is not correct."
	default:
		return "Something went wrong."
	}
}
