package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"classquiz/internal/models"
	"classquiz/internal/service"
)

// QuizHandler serves the quiz form and grades submissions
type QuizHandler struct {
	quizService *service.QuizService
	middleware  *Middleware
	templates   *template.Template
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, middleware *Middleware, templates *template.Template) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		middleware:  middleware,
		templates:   templates,
	}
}

// ShowQuiz runs the admission check and presents a freshly sampled quiz
func (h *QuizHandler) ShowQuiz(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	today := time.Now().Format(service.DateLayout)

	admission := h.quizService.CheckAdmission(session, today)
	h.middleware.SaveSession(w, r, session)

	if !admission.Allowed {
		h.renderMessage(w, session, "Quiz", buildLimitStatus(admission).Message)
		return
	}

	quiz, err := h.quizService.BuildQuiz(session.Account)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			h.renderMessage(w, session, "Quiz", "No questions are available right now.")
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Quiz sampling failed", err)
		return
	}

	ids := make([]string, len(quiz.Questions))
	for i, q := range quiz.Questions {
		ids[i] = q.ID
	}

	data := map[string]interface{}{
		"Title":            "Quiz",
		"Session":          session,
		"Questions":        quiz.Questions,
		"QuestionIDs":      strings.Join(ids, ","),
		"ShowExplanation":  quiz.ShowExplanation,
		"TimeLimitSeconds": quiz.TimeLimitSeconds,
	}
	if err := h.templates.ExecuteTemplate(w, "quiz.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering quiz template", err)
	}
}

// Submit grades the submitted answers, records the attempt and shows the
// result page. Late submissions past the client-side timer are still graded;
// the time limit is advisory only.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	var presentedIDs []string
	for _, qid := range strings.Split(r.FormValue("question_ids"), ",") {
		qid = strings.TrimSpace(qid)
		if qid != "" {
			presentedIDs = append(presentedIDs, qid)
		}
	}

	answers := make(map[string]string, len(presentedIDs))
	for _, qid := range presentedIDs {
		answers[qid] = r.FormValue("answer_" + qid)
	}

	score, details := h.quizService.Grade(presentedIDs, answers)

	outcome, err := h.quizService.Record(session, time.Now(), score, details)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to record attempt", err)
		return
	}

	// Counter and cached points changed; re-issue the cookie
	h.middleware.SaveSession(w, r, session)

	data := map[string]interface{}{
		"Title":   "Result",
		"Session": session,
		"Outcome": outcome,
	}
	if err := h.templates.ExecuteTemplate(w, "result.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering result template", err)
	}
}

func (h *QuizHandler) renderMessage(w http.ResponseWriter, session *models.Session, title, message string) {
	data := map[string]interface{}{
		"Title":   title,
		"Session": session,
		"Message": message,
	}
	if err := h.templates.ExecuteTemplate(w, "message.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering message template", err)
	}
}
