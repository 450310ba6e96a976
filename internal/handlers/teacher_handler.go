package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"classquiz/internal/models"
	"classquiz/internal/service"
	"classquiz/internal/settings"
)

// TeacherHandler serves the teacher dashboard and the quiz settings page
type TeacherHandler struct {
	quizService *service.QuizService
	settings    *settings.Store
	templates   *template.Template
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(quizService *service.QuizService, st *settings.Store, templates *template.Template) *TeacherHandler {
	return &TeacherHandler{
		quizService: quizService,
		settings:    st,
		templates:   templates,
	}
}

// Dashboard shows the ranked roster with the class aggregates
func (h *TeacherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	rows, summary, err := h.quizService.Roster()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Roster lookup failed", err)
		return
	}

	data := map[string]interface{}{
		"Title":    "Class Overview",
		"Session":  session,
		"Students": rows,
		"Summary":  summary,
	}
	if err := h.templates.ExecuteTemplate(w, "teacher_home.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering teacher template", err)
	}
}

// Students shows the per-student attempt counts and average scores
func (h *TeacherHandler) Students(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	rows, summary, err := h.quizService.Roster()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Roster lookup failed", err)
		return
	}

	data := map[string]interface{}{
		"Title":    "Student Attempts",
		"Session":  session,
		"Students": rows,
		"Summary":  summary,
	}
	if err := h.templates.ExecuteTemplate(w, "teacher_students.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering students template", err)
	}
}

// ShowSettings displays the quiz settings form
func (h *TeacherHandler) ShowSettings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, "", "")
}

// UpdateSettings validates the form and persists the new settings
// immediately. The time limit is entered in minutes and stored in seconds.
func (h *TeacherHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	parsed, err := parseSettingsForm(r)
	if err != nil {
		h.renderSettings(w, r, "", err.Error())
		return
	}

	if err := h.settings.Save(parsed); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save settings", err)
		return
	}

	h.renderSettings(w, r, "Settings updated.", "")
}

// parseSettingsForm validates the settings form fields
func parseSettingsForm(r *http.Request) (models.Settings, error) {
	var s models.Settings

	qStr := strings.TrimSpace(r.FormValue("questions_per_test"))
	if qStr == "" {
		return s, fmt.Errorf("please enter the number of questions per quiz")
	}
	q, err := strconv.Atoi(qStr)
	if err != nil || q <= 0 {
		return s, fmt.Errorf("questions per quiz must be a positive integer")
	}
	s.QuestionsPerTest = q

	s.ShowExplanation = r.Form.Has("show_explanation")
	s.WrongOnlyMode = r.Form.Has("wrong_only_mode")

	if limitStr := strings.TrimSpace(r.FormValue("daily_limit")); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return s, fmt.Errorf("the daily limit cannot be negative")
		}
		s.DailyLimit = limit
	}

	if minutesStr := strings.TrimSpace(r.FormValue("time_limit_minutes")); minutesStr != "" {
		minutes, err := strconv.Atoi(minutesStr)
		if err != nil || minutes < 0 {
			return s, fmt.Errorf("the time limit cannot be negative")
		}
		s.TimeLimitSeconds = minutes * 60
	}

	return s, nil
}

func (h *TeacherHandler) renderSettings(w http.ResponseWriter, r *http.Request, message, errMsg string) {
	session := GetSessionFromContext(r.Context())
	current := h.settings.Get()

	data := map[string]interface{}{
		"Title":            "Quiz Settings",
		"Session":          session,
		"Settings":         current,
		"TimeLimitMinutes": current.TimeLimitSeconds / 60,
		"Message":          message,
		"Error":            errMsg,
	}
	if err := h.templates.ExecuteTemplate(w, "settings.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering settings template", err)
	}
}
