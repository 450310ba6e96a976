package repository

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"classquiz/internal/models"

	"github.com/xuri/excelize/v2"
)

// UserSheet is the worksheet accounts are stored on
const UserSheet = "Users"

var requiredUserColumns = []string{"account", "password", "name", "total_points"}

// UserRepository stores accounts in a workbook. Every operation is a full
// read (or read-modify-write) of the file; a mutex serializes access so
// concurrent submissions cannot lose point updates.
type UserRepository struct {
	path string
	mu   sync.Mutex
}

// NewUserRepository creates a new user repository
func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Init creates the users workbook with its header and demo accounts when it
// does not exist yet
func (r *UserRepository) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat users workbook: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", UserSheet); err != nil {
		return fmt.Errorf("failed to name users sheet: %w", err)
	}
	seed := [][]interface{}{
		{"account", "password", "name", "total_points"},
		{"s001", "1234", "Student One", 0},
		{"s002", "1234", "Student Two", 0},
		{"t001", "1234", "Teacher", 0},
	}
	for i, row := range seed {
		if err := f.SetSheetRow(UserSheet, cellName(1, i+1), &row); err != nil {
			return fmt.Errorf("failed to seed users workbook: %w", err)
		}
	}
	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("failed to create users workbook: %w", err)
	}
	return nil
}

// FindUser retrieves an account by its trimmed account ID.
// Returns nil when the account or the workbook itself does not exist.
func (r *UserRepository) FindUser(account string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll()
	if err != nil {
		return nil, err
	}

	account = strings.TrimSpace(account)
	for i := range users {
		if users[i].Account == account {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Authenticate checks account and password by exact trimmed string equality.
// Returns nil without error when the credentials do not match.
func (r *UserRepository) Authenticate(account, password string) (*models.User, error) {
	user, err := r.FindUser(account)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password != strings.TrimSpace(password) {
		return nil, nil
	}
	return user, nil
}

// AllUsers returns every account in sheet order
func (r *UserRepository) AllUsers() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

// UpdatePassword overwrites the password cell of the given account
func (r *UserRepository) UpdatePassword(account, newPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, rows, idx, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	account = strings.TrimSpace(account)
	for i, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		cell := cellName(idx["password"]+1, i+2)
		if err := f.SetCellValue(UserSheet, cell, newPassword); err != nil {
			return fmt.Errorf("failed to set password cell: %w", err)
		}
		if err := f.Save(); err != nil {
			return fmt.Errorf("failed to save users workbook: %w", err)
		}
		return nil
	}
	return fmt.Errorf("account %q not found", account)
}

// IncrementPoints adds delta to the account's total points and returns the
// new total. The read-add-write cycle runs under the repository mutex.
func (r *UserRepository) IncrementPoints(account string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, rows, idx, err := r.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	account = strings.TrimSpace(account)
	for i, row := range rows[1:] {
		if cellAt(row, idx["account"]) != account {
			continue
		}
		current := parsePoints(cellAt(row, idx["total_points"]))
		newTotal := current + delta
		cell := cellName(idx["total_points"]+1, i+2)
		if err := f.SetCellValue(UserSheet, cell, newTotal); err != nil {
			return 0, fmt.Errorf("failed to set points cell: %w", err)
		}
		if err := f.Save(); err != nil {
			return 0, fmt.Errorf("failed to save users workbook: %w", err)
		}
		return newTotal, nil
	}
	return 0, fmt.Errorf("account %q not found", account)
}

// Rank returns the 1-based position of the account among all users sorted by
// total points descending, ties broken by sheet order, together with the
// total user count. An absent workbook yields (0, 0) without error.
func (r *UserRepository) Rank(account string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.readAll()
	if err != nil {
		return 0, 0, err
	}
	if len(users) == 0 {
		return 0, 0, nil
	}

	sorted := make([]models.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	account = strings.TrimSpace(account)
	for i, u := range sorted {
		if u.Account == account {
			return i + 1, len(users), nil
		}
	}
	return 0, len(users), nil
}

// open loads the workbook and validates the header. Callers hold the mutex.
func (r *UserRepository) open() (*excelize.File, [][]string, map[string]int, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open users workbook: %w", err)
	}

	rows, err := f.GetRows(UserSheet)
	if err != nil || len(rows) == 0 {
		f.Close()
		return nil, nil, nil, fmt.Errorf("users sheet %q missing or empty", UserSheet)
	}

	idx := headerIndex(rows[0])
	if missing := missingColumns(idx, requiredUserColumns); len(missing) > 0 {
		f.Close()
		return nil, nil, nil, fmt.Errorf("users workbook missing columns: %s", strings.Join(missing, ", "))
	}
	return f, rows, idx, nil
}

// readAll returns all accounts, treating a missing workbook as empty.
// Callers hold the mutex.
func (r *UserRepository) readAll() ([]models.User, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return nil, nil
	}

	f, rows, idx, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var users []models.User
	for _, row := range rows[1:] {
		account := cellAt(row, idx["account"])
		if account == "" {
			continue
		}
		users = append(users, models.User{
			Account:     account,
			Password:    cellAt(row, idx["password"]),
			Name:        cellAt(row, idx["name"]),
			TotalPoints: parsePoints(cellAt(row, idx["total_points"])),
		})
	}
	return users, nil
}

// parsePoints reads a points cell, treating blanks and junk as zero
func parsePoints(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
