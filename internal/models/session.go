package models

// Session is the per-login state bag carried in a signed cookie: who is
// logged in, their cached points, and the daily quiz counters
type Session struct {
	Account        string `json:"account"`
	Name           string `json:"name"`
	TotalPoints    int    `json:"total_points"`
	Teacher        bool   `json:"teacher"`
	LastQuizDate   string `json:"last_quiz_date"`
	QuizTimesToday int    `json:"quiz_times_today"`
}

// ResetForToday zeroes the quiz counter when the stored date is not today's
// date. Returns true when a reset happened.
func (s *Session) ResetForToday(today string) bool {
	if s.LastQuizDate == today {
		return false
	}
	s.LastQuizDate = today
	s.QuizTimesToday = 0
	return true
}
