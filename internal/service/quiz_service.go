package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"classquiz/internal/mirror"
	"classquiz/internal/models"
	"classquiz/internal/repository"
	"classquiz/internal/settings"
)

var ErrNoQuestions = errors.New("no questions available")

// DateLayout is the day granularity used for the daily attempt limit
const DateLayout = "2006-01-02"

// Admission is the outcome of the daily-limit gate
type Admission struct {
	Allowed   bool
	Unlimited bool
	Limit     int
	Used      int
	Remaining int
}

// QuizQuestion is one question as presented to the student, options already
// shuffled
type QuizQuestion struct {
	ID      string
	Text    string
	Options []string
}

// QuizPresentation bundles the sampled questions with presentation hints
type QuizPresentation struct {
	Questions        []QuizQuestion
	ShowExplanation  bool
	TimeLimitSeconds int
}

// SubmitOutcome is everything the result page shows after an attempt was
// recorded
type SubmitOutcome struct {
	Score           int
	Total           int
	Details         []models.QuestionResult
	TotalPoints     int
	Rank            int
	TotalUsers      int
	Level           string
	ShowExplanation bool
}

// ClassSummary aggregates the roster for the teacher dashboard
type ClassSummary struct {
	TotalStudents int
	MaxPoints     int
	AvgPoints     float64
}

// QuizService orchestrates the quiz flow: admission, sampling, grading,
// recording, and the derived statistics
type QuizService struct {
	bank     []models.Question
	byID     map[string]models.Question
	settings *settings.Store
	users    *repository.UserRepository
	results  *repository.ResultRepository
	mirror   *mirror.Mirror
}

// NewQuizService creates a new quiz service over the loaded bank.
// mirror may be nil (disabled).
func NewQuizService(bank []models.Question, st *settings.Store, users *repository.UserRepository, results *repository.ResultRepository, m *mirror.Mirror) *QuizService {
	byID := make(map[string]models.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}
	return &QuizService{
		bank:     bank,
		byID:     byID,
		settings: st,
		users:    users,
		results:  results,
		mirror:   m,
	}
}

// BankSize reports how many questions are loaded
func (s *QuizService) BankSize() int {
	return len(s.bank)
}

// CheckAdmission evaluates the daily-limit gate. It resets the session's
// counter when the stored date is not today; the caller must re-issue the
// session cookie afterwards.
func (s *QuizService) CheckAdmission(sess *models.Session, today string) Admission {
	sess.ResetForToday(today)

	limit := s.settings.Get().DailyLimit
	if limit == 0 {
		return Admission{Allowed: true, Unlimited: true}
	}

	used := sess.QuizTimesToday
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Admission{
		Allowed:   used < limit,
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
	}
}

// BuildQuiz samples a quiz for the account: wrong-only pool when enabled and
// non-empty, otherwise the full bank; min(questions_per_test, pool) distinct
// questions; options shuffled per question. Returns ErrNoQuestions when the
// pool is empty.
func (s *QuizService) BuildQuiz(account string) (*QuizPresentation, error) {
	cfg := s.settings.Get()

	pool := s.bank
	if cfg.WrongOnlyMode {
		wrongIDs, err := s.results.WrongQuestionIDs(account)
		if err != nil {
			log.Printf("Wrong-question lookup failed for %s, using full bank: %v", account, err)
		} else if len(wrongIDs) > 0 {
			var wrong []models.Question
			for _, q := range s.bank {
				if wrongIDs[q.ID] {
					wrong = append(wrong, q)
				}
			}
			if len(wrong) > 0 {
				pool = wrong
			}
		}
	}

	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	n := cfg.QuestionsPerTest
	if n > len(pool) {
		n = len(pool)
	}

	questions := make([]QuizQuestion, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		q := pool[i]
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		rand.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})
		questions = append(questions, QuizQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Options: options,
		})
	}

	return &QuizPresentation{
		Questions:        questions,
		ShowExplanation:  cfg.ShowExplanation,
		TimeLimitSeconds: cfg.TimeLimitSeconds,
	}, nil
}

// Grade scores a submission. Only the presented question IDs are graded;
// a missing or blank answer is "no answer" and never counts as correct.
// The score is the count of exact string matches against the bank answer.
func (s *QuizService) Grade(presentedIDs []string, answers map[string]string) (int, []models.QuestionResult) {
	score := 0
	var details []models.QuestionResult

	for _, qid := range presentedIDs {
		q, ok := s.byID[qid]
		if !ok {
			continue
		}
		given := answers[qid]
		correct := given != "" && given == q.Answer
		if correct {
			score++
		}
		details = append(details, models.QuestionResult{
			QuestionID:    q.ID,
			Text:          q.Text,
			GivenAnswer:   given,
			CorrectAnswer: q.Answer,
			Correct:       correct,
			Answered:      given != "",
			Explanation:   q.Explanation,
		})
	}
	return score, details
}

// Record persists a graded attempt: appends the result row, adds the score
// to the user's points, recomputes rank and level, queues the mirror append
// and bumps the session's daily counter. Store failures on this path
// propagate; the attempt must not be silently dropped.
func (s *QuizService) Record(sess *models.Session, now time.Time, score int, details []models.QuestionResult) (*SubmitOutcome, error) {
	rec := &models.AttemptRecord{
		Time:    now,
		Account: sess.Account,
		Name:    sess.Name,
		Score:   score,
		Answers: make(map[string]models.AnswerMark, len(details)),
	}
	for _, d := range details {
		mark := models.MarkIncorrect
		if d.Correct {
			mark = models.MarkCorrect
		}
		rec.Answers[d.QuestionID] = models.AnswerMark{Given: d.GivenAnswer, Mark: mark}
	}

	if _, err := s.results.AppendAttempt(rec, s.bank); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	newTotal, err := s.users.IncrementPoints(sess.Account, score)
	if err != nil {
		return nil, fmt.Errorf("failed to update points: %w", err)
	}

	rank, totalUsers, err := s.users.Rank(sess.Account)
	if err != nil {
		log.Printf("Rank computation failed for %s: %v", sess.Account, err)
		rank, totalUsers = 0, 0
	}

	s.mirror.EnqueueResultRow(repository.MirrorRow(rec, s.bank))

	sess.ResetForToday(now.Format(DateLayout))
	sess.QuizTimesToday++
	sess.TotalPoints = newTotal

	return &SubmitOutcome{
		Score:           score,
		Total:           len(details),
		Details:         details,
		TotalPoints:     newTotal,
		Rank:            rank,
		TotalUsers:      totalUsers,
		Level:           LevelFor(newTotal),
		ShowExplanation: s.settings.Get().ShowExplanation,
	}, nil
}

// StatsFor returns the account's attempt statistics for the given day
func (s *QuizService) StatsFor(account, today string) (models.AccountStats, error) {
	return s.results.StatsFor(account, today)
}

// History returns the account's recorded attempts in submission order
func (s *QuizService) History(account string) ([]models.AttemptSummary, error) {
	return s.results.History(account)
}

// Rank returns the account's 1-based rank and the total user count
func (s *QuizService) Rank(account string) (int, int, error) {
	return s.users.Rank(account)
}

// Review lists the account's wrong questions, most recently missed first.
// Questions that have left the bank keep their row with a placeholder text.
func (s *QuizService) Review(account string) ([]models.WrongAnswer, error) {
	summary, err := s.results.WrongAnswerSummary(account)
	if err != nil {
		return nil, err
	}

	for i := range summary {
		q, ok := s.byID[summary[i].QuestionID]
		if !ok {
			summary[i].Text = summary[i].QuestionID + " (removed from the question bank)"
			continue
		}
		summary[i].Text = q.Text
		summary[i].CorrectAnswer = q.Answer
		summary[i].Explanation = q.Explanation
		summary[i].InBank = true
	}
	return summary, nil
}

// Roster builds the teacher dashboard: every student ranked by points
// descending (ties by name), with attempt counts and average scores, plus
// the class aggregates
func (s *QuizService) Roster() ([]models.StudentRow, ClassSummary, error) {
	users, err := s.users.AllUsers()
	if err != nil {
		return nil, ClassSummary{}, fmt.Errorf("failed to load roster: %w", err)
	}

	classStats, err := s.results.ClassAttemptStats()
	if err != nil {
		log.Printf("Class attempt stats unavailable: %v", err)
		classStats = map[string]models.ClassStats{}
	}

	rows := make([]models.StudentRow, 0, len(users))
	for _, u := range users {
		row := models.StudentRow{
			Account:     u.Account,
			Name:        u.Name,
			TotalPoints: u.TotalPoints,
		}
		if cs, ok := classStats[u.Account]; ok && cs.Attempts > 0 {
			row.Attempts = cs.Attempts
			row.AvgScore = roundTo(float64(cs.SumScore)/float64(cs.Attempts), 2)
			row.HasAttempts = true
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].Name < rows[j].Name
	})

	summary := ClassSummary{TotalStudents: len(rows)}
	sum := 0
	for i := range rows {
		rows[i].Rank = i + 1
		sum += rows[i].TotalPoints
		if rows[i].TotalPoints > summary.MaxPoints {
			summary.MaxPoints = rows[i].TotalPoints
		}
	}
	if len(rows) > 0 {
		summary.AvgPoints = roundTo(float64(sum)/float64(len(rows)), 1)
	}
	return rows, summary, nil
}

// LevelFor maps total points to the level label. Thresholds are fixed.
func LevelFor(points int) string {
	switch {
	case points < 10:
		return "Lv.1 Keep practicing"
	case points < 30:
		return "Lv.2 Basics locked in"
	case points < 60:
		return "Lv.3 Almost exam ready"
	default:
		return "Lv.4 Ready for the test"
	}
}

func roundTo(v float64, decimals int) float64 {
	factor := 1.0
	for i := 0; i < decimals; i++ {
		factor *= 10
	}
	return float64(int(v*factor+0.5)) / factor
}
