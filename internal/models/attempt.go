package models

import "time"

// Correctness marks as written to the results workbook. Empty means the
// question was not part of that attempt.
const (
	MarkCorrect   = "O"
	MarkIncorrect = "X"
)

// QuestionResult is the graded outcome for a single question of an attempt
type QuestionResult struct {
	QuestionID    string
	Text          string
	GivenAnswer   string
	CorrectAnswer string
	Correct       bool
	Answered      bool
	Explanation   string
}

// AttemptRecord is one completed submission, one row of the results workbook.
// Answers maps question ID to the answer the student gave; only questions
// present in the map were part of the attempt.
type AttemptRecord struct {
	Time          time.Time
	Account       string
	Name          string
	AttemptNumber int
	Score         int
	Answers       map[string]AnswerMark
}

// AnswerMark pairs the given answer with its correctness mark
type AnswerMark struct {
	Given string
	Mark  string
}

// AttemptSummary is one row of a student's attempt history
type AttemptSummary struct {
	Time          time.Time
	AttemptNumber int
	Score         int
}

// AccountStats aggregates all recorded attempts of one account
type AccountStats struct {
	AttemptCount  int
	BestScore     int
	AverageScore  float64
	LastScore     int
	LastTime      string
	TodayAttempts []AttemptSummary
}

// WrongAnswer aggregates the incorrect marks of one question for one account
type WrongAnswer struct {
	QuestionID    string
	Text          string
	CorrectAnswer string
	Explanation   string
	Count         int
	LastTime      time.Time
	LastGiven     string
	InBank        bool
}

// ClassStats holds per-account attempt aggregates for the teacher view
type ClassStats struct {
	Attempts int
	SumScore int
}
