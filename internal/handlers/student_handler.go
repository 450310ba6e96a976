package handlers

import (
	"html/template"
	"net/http"
	"time"

	"classquiz/internal/service"
)

// StudentHandler serves the student dashboard, points and review pages
type StudentHandler struct {
	quizService *service.QuizService
	middleware  *Middleware
	templates   *template.Template
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(quizService *service.QuizService, middleware *Middleware, templates *template.Template) *StudentHandler {
	return &StudentHandler{
		quizService: quizService,
		middleware:  middleware,
		templates:   templates,
	}
}

// Home shows the student dashboard: points, level, rank, the daily-limit
// banner and the attempt statistics
func (h *StudentHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	today := time.Now().Format(service.DateLayout)

	admission := h.quizService.CheckAdmission(session, today)
	// The daily counter may have been reset for the new day
	h.middleware.SaveSession(w, r, session)

	rank, totalUsers, err := h.quizService.Rank(session.Account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Rank lookup failed", err)
		return
	}

	stats, err := h.quizService.StatsFor(session.Account, today)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Stats lookup failed", err)
		return
	}

	limit := buildLimitStatus(admission)
	data := map[string]interface{}{
		"Title":       "Home",
		"Session":     session,
		"Level":       service.LevelFor(session.TotalPoints),
		"Rank":        rank,
		"TotalUsers":  totalUsers,
		"Limit":       limit,
		"Stats":       stats,
		"HasAttempts": stats.AttemptCount > 0,
	}
	if err := h.templates.ExecuteTemplate(w, "home.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering home template", err)
	}
}

// Points shows the attempt history with cumulative points, current rank and
// total
func (h *StudentHandler) Points(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	history, err := h.quizService.History(session.Account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "History lookup failed", err)
		return
	}

	rank, totalUsers, err := h.quizService.Rank(session.Account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Rank lookup failed", err)
		return
	}

	data := map[string]interface{}{
		"Title":      "Points",
		"Session":    session,
		"Records":    buildPointsEntries(history),
		"Rank":       rank,
		"TotalUsers": totalUsers,
	}
	if err := h.templates.ExecuteTemplate(w, "points.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering points template", err)
	}
}

// Review lists the questions the student has answered incorrectly, most
// recently missed first
func (h *StudentHandler) Review(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	wrong, err := h.quizService.Review(session.Account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Review lookup failed", err)
		return
	}

	data := map[string]interface{}{
		"Title":   "Review",
		"Session": session,
		"Wrong":   wrong,
	}
	if err := h.templates.ExecuteTemplate(w, "review.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering review template", err)
	}
}
