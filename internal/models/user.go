package models

// User represents a student or teacher account stored in the users workbook
type User struct {
	Account     string
	Password    string
	Name        string
	TotalPoints int
}

// StudentRow is a roster entry for the teacher dashboard
type StudentRow struct {
	Account     string
	Name        string
	TotalPoints int
	Rank        int
	Attempts    int
	AvgScore    float64
	HasAttempts bool
}
