package models

// Question represents one entry of the question bank
type Question struct {
	ID          string
	Text        string
	Options     []string
	Answer      string
	Explanation string
	Category    string
}

// HasAnswerInOptions reports whether the answer string is one of the options.
// Questions violating this are kept in the bank but flagged at load time.
func (q *Question) HasAnswerInOptions() bool {
	if q.Answer == "" || len(q.Options) == 0 {
		return true
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return true
		}
	}
	return false
}

// LoadReport summarizes one question bank load for operator visibility
type LoadReport struct {
	Loaded   int
	Skipped  int
	Warnings []string
}
