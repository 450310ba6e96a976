package repository

import (
	"fmt"
	"log"
	"strings"

	"classquiz/internal/models"

	"github.com/xuri/excelize/v2"
)

// QuestionSheet is the worksheet the bank is read from
const QuestionSheet = "Questions"

// requiredQuestionColumns are located by name, order-independent
var requiredQuestionColumns = []string{"id", "text", "options", "answer", "explanation", "category"}

// QuestionRepository loads the question bank from a workbook.
// The bank is read once at startup and treated as read-only afterwards.
type QuestionRepository struct {
	path string
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(path string) *QuestionRepository {
	return &QuestionRepository{path: path}
}

// Load reads and validates the question bank. A missing file, missing sheet
// or missing required column fails the whole load: the bank comes back empty
// and the cause is logged. Defective rows are skipped or kept-with-warning
// per row; the report carries the details for operator visibility.
func (r *QuestionRepository) Load() ([]models.Question, models.LoadReport) {
	var report models.LoadReport

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		log.Printf("Question bank unavailable (%s): %v", r.path, err)
		return nil, report
	}
	defer f.Close()

	rows, err := f.GetRows(QuestionSheet)
	if err != nil {
		log.Printf("Question bank sheet %q not found in %s: %v", QuestionSheet, r.path, err)
		return nil, report
	}
	if len(rows) == 0 {
		log.Printf("Question bank %s is empty", r.path)
		return nil, report
	}

	idx := headerIndex(rows[0])
	if missing := missingColumns(idx, requiredQuestionColumns); len(missing) > 0 {
		log.Printf("Question bank %s is missing columns: %s", r.path, strings.Join(missing, ", "))
		return nil, report
	}

	var questions []models.Question
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		q := models.Question{
			ID:          cellAt(row, idx["id"]),
			Text:        cellAt(row, idx["text"]),
			Answer:      cellAt(row, idx["answer"]),
			Explanation: cellAt(row, idx["explanation"]),
			Category:    cellAt(row, idx["category"]),
		}

		if q.ID == "" || q.Text == "" {
			report.Skipped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("row %d: missing id or question text", rowNum))
			continue
		}

		q.Options = splitOptions(cellAt(row, idx["options"]))
		if len(q.Options) == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("row %d (%s): no options", rowNum, q.ID))
		}
		if !q.HasAnswerInOptions() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("row %d (%s): answer %q is not among the options", rowNum, q.ID, q.Answer))
		}

		questions = append(questions, q)
	}

	report.Loaded = len(questions)
	log.Printf("Question bank loaded: %d questions, %d rows skipped", report.Loaded, report.Skipped)
	for _, warning := range report.Warnings {
		log.Printf("Question bank: %s", warning)
	}

	return questions, report
}

// splitOptions splits a comma-delimited options cell, trimming each token
// and dropping empty ones
func splitOptions(cell string) []string {
	if cell == "" {
		return nil
	}
	var options []string
	for _, token := range strings.Split(cell, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			options = append(options, token)
		}
	}
	return options
}
