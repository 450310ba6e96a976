package repository

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// newUserRepo creates an initialized user repository in a temp dir
func newUserRepo(t *testing.T) *UserRepository {
	t.Helper()

	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.xlsx"))
	if err := repo.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return repo
}

func TestUserInitSeedsAccounts(t *testing.T) {
	repo := newUserRepo(t)

	users, err := repo.AllUsers()
	if err != nil {
		t.Fatalf("AllUsers() failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("AllUsers() returned %d accounts, want 3", len(users))
	}

	wantAccounts := []string{"s001", "s002", "t001"}
	for i, u := range users {
		if u.Account != wantAccounts[i] {
			t.Errorf("users[%d].Account = %q, want %q", i, u.Account, wantAccounts[i])
		}
		if u.Password != "1234" {
			t.Errorf("users[%d].Password = %q, want %q", i, u.Password, "1234")
		}
		if u.TotalPoints != 0 {
			t.Errorf("users[%d].TotalPoints = %d, want 0", i, u.TotalPoints)
		}
	}
}

func TestUserInitDoesNotOverwrite(t *testing.T) {
	repo := newUserRepo(t)

	if _, err := repo.IncrementPoints("s001", 7); err != nil {
		t.Fatalf("IncrementPoints() failed: %v", err)
	}
	if err := repo.Init(); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}

	user, err := repo.FindUser("s001")
	if err != nil || user == nil {
		t.Fatalf("FindUser() = %v, %v", user, err)
	}
	if user.TotalPoints != 7 {
		t.Errorf("TotalPoints = %d after re-init, want 7", user.TotalPoints)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newUserRepo(t)

	tests := []struct {
		name     string
		account  string
		password string
		wantUser bool
	}{
		{name: "valid credentials", account: "s001", password: "1234", wantUser: true},
		{name: "trimmed credentials", account: " s001 ", password: " 1234 ", wantUser: true},
		{name: "wrong password", account: "s001", password: "9999", wantUser: false},
		{name: "unknown account", account: "nobody", password: "1234", wantUser: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.Authenticate(tt.account, tt.password)
			if err != nil {
				t.Fatalf("Authenticate() failed: %v", err)
			}
			if (user != nil) != tt.wantUser {
				t.Errorf("Authenticate() user = %v, want existence %v", user, tt.wantUser)
			}
		})
	}
}

func TestFindUserMissingWorkbook(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "absent.xlsx"))

	user, err := repo.FindUser("s001")
	if err != nil {
		t.Fatalf("FindUser() on missing workbook failed: %v", err)
	}
	if user != nil {
		t.Errorf("FindUser() = %+v, want nil", user)
	}
}

func TestIncrementPoints(t *testing.T) {
	repo := newUserRepo(t)

	total, err := repo.IncrementPoints("s001", 3)
	if err != nil {
		t.Fatalf("IncrementPoints() failed: %v", err)
	}
	if total != 3 {
		t.Errorf("first increment = %d, want 3", total)
	}

	total, err = repo.IncrementPoints("s001", 2)
	if err != nil {
		t.Fatalf("IncrementPoints() failed: %v", err)
	}
	if total != 5 {
		t.Errorf("second increment = %d, want 5", total)
	}

	user, err := repo.FindUser("s001")
	if err != nil || user == nil {
		t.Fatalf("FindUser() = %v, %v", user, err)
	}
	if user.TotalPoints != 5 {
		t.Errorf("persisted TotalPoints = %d, want 5", user.TotalPoints)
	}

	if _, err := repo.IncrementPoints("nobody", 1); err == nil {
		t.Error("IncrementPoints() for unknown account should fail")
	}
}

func TestUpdatePassword(t *testing.T) {
	repo := newUserRepo(t)

	if err := repo.UpdatePassword("s002", "secret"); err != nil {
		t.Fatalf("UpdatePassword() failed: %v", err)
	}

	user, err := repo.Authenticate("s002", "secret")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if user == nil {
		t.Error("new password not accepted")
	}

	old, err := repo.Authenticate("s002", "1234")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if old != nil {
		t.Error("old password still accepted")
	}

	if err := repo.UpdatePassword("nobody", "x"); err == nil {
		t.Error("UpdatePassword() for unknown account should fail")
	}
}

func TestRank(t *testing.T) {
	repo := newUserRepo(t)

	// s002 leads, s001 and t001 tie on zero in sheet order
	if _, err := repo.IncrementPoints("s002", 10); err != nil {
		t.Fatalf("IncrementPoints() failed: %v", err)
	}

	tests := []struct {
		name      string
		account   string
		wantRank  int
		wantTotal int
	}{
		{name: "leader", account: "s002", wantRank: 1, wantTotal: 3},
		{name: "tie keeps sheet order first", account: "s001", wantRank: 2, wantTotal: 3},
		{name: "tie keeps sheet order second", account: "t001", wantRank: 3, wantTotal: 3},
		{name: "unknown account", account: "nobody", wantRank: 0, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, total, err := repo.Rank(tt.account)
			if err != nil {
				t.Fatalf("Rank() failed: %v", err)
			}
			if rank != tt.wantRank || total != tt.wantTotal {
				t.Errorf("Rank() = (%d, %d), want (%d, %d)", rank, total, tt.wantRank, tt.wantTotal)
			}
		})
	}
}

func TestRankMissingWorkbook(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "absent.xlsx"))

	rank, total, err := repo.Rank("s001")
	if err != nil {
		t.Fatalf("Rank() on missing workbook failed: %v", err)
	}
	if rank != 0 || total != 0 {
		t.Errorf("Rank() = (%d, %d), want (0, 0)", rank, total)
	}
}

func TestReadAllSkipsBlankAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.xlsx")

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", UserSheet); err != nil {
		t.Fatalf("failed to name sheet: %v", err)
	}
	rows := [][]interface{}{
		{"account", "password", "name", "total_points"},
		{"s001", "1234", "Student One", 4},
		{"", "", "", ""},
		{"s003", "1234", "Student Three", "junk"},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(UserSheet, cellName(1, i+1), &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	f.Close()

	users, err := NewUserRepository(path).AllUsers()
	if err != nil {
		t.Fatalf("AllUsers() failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("AllUsers() returned %d accounts, want 2", len(users))
	}
	if users[1].TotalPoints != 0 {
		t.Errorf("junk points cell parsed to %d, want 0", users[1].TotalPoints)
	}
}
