package repository

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeQuestionBank builds a question workbook in a temp dir for tests
func writeQuestionBank(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "questions.xlsx")
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("failed to name sheet: %v", err)
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cellName(1, i+1), &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

var questionHeader = []interface{}{"id", "text", "options", "answer", "explanation", "category"}

func TestQuestionLoad(t *testing.T) {
	path := writeQuestionBank(t, QuestionSheet, [][]interface{}{
		questionHeader,
		{"q1", "What is 2+2?", "3, 4, 5", "4", "Basic addition", "math"},
		{"q2", "Capital of France?", "Paris,London,  Berlin ,", "Paris", "", "geo"},
	})

	questions, report := NewQuestionRepository(path).Load()

	if len(questions) != 2 {
		t.Fatalf("Load() returned %d questions, want 2", len(questions))
	}
	if report.Loaded != 2 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 2 loaded and 0 skipped", report)
	}

	q := questions[0]
	if q.ID != "q1" || q.Answer != "4" || q.Category != "math" {
		t.Errorf("unexpected first question: %+v", q)
	}
	wantOptions := []string{"3", "4", "5"}
	for i, opt := range q.Options {
		if opt != wantOptions[i] {
			t.Errorf("Options[%d] = %q, want %q", i, opt, wantOptions[i])
		}
	}

	// Trailing comma and padded tokens collapse to three clean options
	if len(questions[1].Options) != 3 {
		t.Errorf("second question has %d options, want 3", len(questions[1].Options))
	}
	if questions[1].Options[2] != "Berlin" {
		t.Errorf("Options[2] = %q, want %q", questions[1].Options[2], "Berlin")
	}
}

func TestQuestionLoadFailClosed(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.xlsx")
			},
		},
		{
			name: "missing sheet",
			path: func(t *testing.T) string {
				return writeQuestionBank(t, "Other", [][]interface{}{questionHeader})
			},
		},
		{
			name: "missing required column",
			path: func(t *testing.T) string {
				return writeQuestionBank(t, QuestionSheet, [][]interface{}{
					{"id", "text", "options", "explanation", "category"},
					{"q1", "Question?", "a,b", "", ""},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, report := NewQuestionRepository(tt.path(t)).Load()
			if questions != nil {
				t.Errorf("Load() returned %d questions, want empty bank", len(questions))
			}
			if report.Loaded != 0 {
				t.Errorf("report.Loaded = %d, want 0", report.Loaded)
			}
		})
	}
}

func TestQuestionLoadDefectiveRows(t *testing.T) {
	path := writeQuestionBank(t, QuestionSheet, [][]interface{}{
		questionHeader,
		{"", "No ID here", "a,b", "a", "", ""},
		{"q2", "", "a,b", "a", "", ""},
		{"q3", "No options", "", "a", "", ""},
		{"q4", "Answer absent", "a,b", "c", "", ""},
		{"q5", "Fine", "a,b", "a", "", ""},
	})

	questions, report := NewQuestionRepository(path).Load()

	// Rows without id or text are dropped; defective but identifiable rows stay
	if len(questions) != 3 {
		t.Fatalf("Load() returned %d questions, want 3", len(questions))
	}
	if report.Skipped != 2 {
		t.Errorf("report.Skipped = %d, want 2", report.Skipped)
	}

	wantWarnings := []string{"missing id or question text", "no options", "not among the options"}
	for _, fragment := range wantWarnings {
		found := false
		for _, w := range report.Warnings {
			if strings.Contains(w, fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no warning containing %q in %v", fragment, report.Warnings)
		}
	}
}

func TestSplitOptions(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{name: "empty cell", cell: "", want: nil},
		{name: "single option", cell: "yes", want: []string{"yes"}},
		{name: "padded tokens", cell: " a , b ,c", want: []string{"a", "b", "c"}},
		{name: "empty tokens dropped", cell: "a,,b,", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitOptions(tt.cell)
			if len(got) != len(tt.want) {
				t.Fatalf("splitOptions(%q) = %v, want %v", tt.cell, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitOptions(%q)[%d] = %q, want %q", tt.cell, i, got[i], tt.want[i])
				}
			}
		})
	}
}
