package repository

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"classquiz/internal/models"

	"github.com/xuri/excelize/v2"
)

// ResultSheet is the worksheet attempts are appended to
const ResultSheet = "Results"

// TimeLayout is the timestamp format used in the results workbook
const TimeLayout = "2006-01-02 15:04:05"

const (
	answerSuffix  = "_answer"
	correctSuffix = "_correct"
)

// resultFixedColumns precede the two per-question columns
var resultFixedColumns = []string{"time", "account", "name", "attempt_number", "score"}

// ResultRepository is the append-only attempt log. One row per submission,
// with one answer and one mark column per question of the bank. The column
// set grows forward-only when the bank grows; earlier rows are never
// backfilled. A mutex serializes the read-count-append cycle so attempt
// numbers stay monotonic per account.
type ResultRepository struct {
	path string
	mu   sync.Mutex
}

// NewResultRepository creates a new result repository
func NewResultRepository(path string) *ResultRepository {
	return &ResultRepository{path: path}
}

// Init creates the results workbook with the header derived from the current
// question bank when it does not exist yet
func (r *ResultRepository) Init(bank []models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat results workbook: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}

	header := make([]interface{}, 0, len(resultFixedColumns)+2*len(bank))
	for _, name := range resultFixedColumns {
		header = append(header, name)
	}
	for _, q := range bank {
		header = append(header, q.ID+answerSuffix, q.ID+correctSuffix)
	}
	if err := f.SetSheetRow(ResultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("failed to create results workbook: %w", err)
	}
	return nil
}

// AppendAttempt records one submission. The attempt number is derived by
// counting the account's existing rows; bank questions missing from the
// header get their two columns appended first. Returns the attempt number.
func (r *ResultRepository) AppendAttempt(rec *models.AttemptRecord, bank []models.Question) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open results workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ResultSheet)
	if err != nil || len(rows) == 0 {
		return 0, fmt.Errorf("results sheet %q missing or empty", ResultSheet)
	}

	header := make([]string, len(rows[0]))
	copy(header, rows[0])
	idx := headerIndex(header)
	if missing := missingColumns(idx, resultFixedColumns); len(missing) > 0 {
		return 0, fmt.Errorf("results workbook missing columns: %s", strings.Join(missing, ", "))
	}

	// Grow the header for questions added to the bank since the sheet was
	// created. Forward-only: existing rows keep their column set.
	grown := false
	for _, q := range bank {
		if _, ok := idx[q.ID+answerSuffix]; ok {
			continue
		}
		header = append(header, q.ID+answerSuffix, q.ID+correctSuffix)
		idx[q.ID+answerSuffix] = len(header) - 2
		idx[q.ID+correctSuffix] = len(header) - 1
		grown = true
	}
	if grown {
		headerRow := make([]interface{}, len(header))
		for i, name := range header {
			headerRow[i] = name
		}
		if err := f.SetSheetRow(ResultSheet, "A1", &headerRow); err != nil {
			return 0, fmt.Errorf("failed to grow results header: %w", err)
		}
	}

	account := strings.TrimSpace(rec.Account)
	prior := 0
	for _, row := range rows[1:] {
		if cellAt(row, idx["account"]) == account {
			prior++
		}
	}
	rec.AttemptNumber = prior + 1

	values := make([]interface{}, len(header))
	values[idx["time"]] = rec.Time.Format(TimeLayout)
	values[idx["account"]] = rec.Account
	values[idx["name"]] = rec.Name
	values[idx["attempt_number"]] = rec.AttemptNumber
	values[idx["score"]] = rec.Score
	for qid, am := range rec.Answers {
		if col, ok := idx[qid+answerSuffix]; ok {
			values[col] = am.Given
		}
		if col, ok := idx[qid+correctSuffix]; ok {
			values[col] = am.Mark
		}
	}

	if err := f.SetSheetRow(ResultSheet, cellName(1, len(rows)+1), &values); err != nil {
		return 0, fmt.Errorf("failed to append attempt row: %w", err)
	}
	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("failed to save results workbook: %w", err)
	}
	return rec.AttemptNumber, nil
}

// MirrorRow renders an attempt in the results column order for replication
// to the remote sheet
func MirrorRow(rec *models.AttemptRecord, bank []models.Question) []interface{} {
	values := []interface{}{
		rec.Time.Format(TimeLayout),
		rec.Account,
		rec.Name,
		rec.AttemptNumber,
		rec.Score,
	}
	for _, q := range bank {
		am := rec.Answers[q.ID]
		values = append(values, am.Given, am.Mark)
	}
	return values
}

// History returns every recorded attempt of the account in row order
func (r *ResultRepository) History(account string) ([]models.AttemptSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, idx, _, err := r.scan()
	if err != nil || rows == nil {
		return nil, err
	}

	account = strings.TrimSpace(account)
	var history []models.AttemptSummary
	for _, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		t, _ := time.Parse(TimeLayout, cellAt(row, idx["time"]))
		history = append(history, models.AttemptSummary{
			Time:          t,
			AttemptNumber: parsePoints(cellAt(row, idx["attempt_number"])),
			Score:         parsePoints(cellAt(row, idx["score"])),
		})
	}
	return history, nil
}

// WrongQuestionIDs returns the set of question IDs the account has ever
// answered incorrectly. An absent workbook yields an empty set.
func (r *ResultRepository) WrongQuestionIDs(account string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, idx, qcols, err := r.scan()
	if err != nil || rows == nil {
		return map[string]bool{}, err
	}

	account = strings.TrimSpace(account)
	wrong := make(map[string]bool)
	for _, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		for qid, cols := range qcols {
			if cellAt(row, cols.mark) == models.MarkIncorrect {
				wrong[qid] = true
			}
		}
	}
	return wrong, nil
}

// StatsFor aggregates all recorded attempts of one account. today is the
// "2006-01-02" date used to pick out today's attempts, which come back
// sorted ascending by time. An absent workbook yields zero-value stats.
func (r *ResultRepository) StatsFor(account, today string) (models.AccountStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats models.AccountStats
	rows, idx, _, err := r.scan()
	if err != nil || rows == nil {
		return stats, err
	}

	account = strings.TrimSpace(account)
	sum := 0
	for _, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		tstr := cellAt(row, idx["time"])
		score := parsePoints(cellAt(row, idx["score"]))
		attemptNo := parsePoints(cellAt(row, idx["attempt_number"]))

		stats.AttemptCount++
		sum += score
		if score > stats.BestScore || stats.AttemptCount == 1 {
			stats.BestScore = score
		}
		stats.LastScore = score
		stats.LastTime = tstr

		if strings.HasPrefix(tstr, today) {
			t, _ := time.Parse(TimeLayout, tstr)
			stats.TodayAttempts = append(stats.TodayAttempts, models.AttemptSummary{
				Time:          t,
				AttemptNumber: attemptNo,
				Score:         score,
			})
		}
	}

	if stats.AttemptCount > 0 {
		stats.AverageScore = math.Round(float64(sum)/float64(stats.AttemptCount)*10) / 10
	}
	sort.SliceStable(stats.TodayAttempts, func(i, j int) bool {
		return stats.TodayAttempts[i].Time.Before(stats.TodayAttempts[j].Time)
	})
	return stats, nil
}

// WrongAnswerSummary aggregates the account's incorrect marks per question:
// how often, when it last happened and what was answered then. Recency ties
// keep the earlier-seen value. Sorted by most recent incorrect time first.
func (r *ResultRepository) WrongAnswerSummary(account string) ([]models.WrongAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, idx, qcols, err := r.scan()
	if err != nil || rows == nil {
		return nil, err
	}

	account = strings.TrimSpace(account)
	agg := make(map[string]*models.WrongAnswer)
	for _, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		t, terr := time.Parse(TimeLayout, cellAt(row, idx["time"]))

		for qid, cols := range qcols {
			if cellAt(row, cols.mark) != models.MarkIncorrect {
				continue
			}
			wa, ok := agg[qid]
			if !ok {
				wa = &models.WrongAnswer{QuestionID: qid}
				agg[qid] = wa
			}
			wa.Count++
			if terr == nil && t.After(wa.LastTime) {
				wa.LastTime = t
				wa.LastGiven = cellAt(row, cols.answer)
			}
		}
	}

	result := make([]models.WrongAnswer, 0, len(agg))
	for _, wa := range agg {
		result = append(result, *wa)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastTime.After(result[j].LastTime)
	})
	return result, nil
}

// ClassAttemptStats returns per-account attempt counts and score sums for
// the teacher dashboard
func (r *ResultRepository) ClassAttemptStats() (map[string]models.ClassStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]models.ClassStats)
	rows, idx, _, err := r.scan()
	if err != nil || rows == nil {
		return stats, err
	}

	for _, row := range rows[1:] {
		account := cellAt(row, idx["account"])
		if account == "" {
			continue
		}
		s := stats[account]
		s.Attempts++
		s.SumScore += parsePoints(cellAt(row, idx["score"]))
		stats[account] = s
	}
	return stats, nil
}

// questionColumns locates the answer/mark column pair of each question
type questionColumns struct {
	answer int
	mark   int
}

// scan opens the workbook and resolves the header. A missing file comes back
// as (nil, nil, nil, nil): no data yet. Callers hold the mutex.
func (r *ResultRepository) scan() ([][]string, map[string]int, map[string]questionColumns, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, nil, nil, nil
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open results workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ResultSheet)
	if err != nil || len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("results sheet %q missing or empty", ResultSheet)
	}

	idx := headerIndex(rows[0])
	if missing := missingColumns(idx, resultFixedColumns); len(missing) > 0 {
		return nil, nil, nil, fmt.Errorf("results workbook missing columns: %s", strings.Join(missing, ", "))
	}

	qcols := make(map[string]questionColumns)
	for name, col := range idx {
		if !strings.HasSuffix(name, answerSuffix) {
			continue
		}
		qid := strings.TrimSuffix(name, answerSuffix)
		markCol, ok := idx[qid+correctSuffix]
		if !ok {
			continue
		}
		qcols[qid] = questionColumns{answer: col, mark: markCol}
	}
	return rows, idx, qcols, nil
}
