package service

import (
	"errors"
	"fmt"
	"strings"

	"classquiz/internal/mirror"
	"classquiz/internal/models"
	"classquiz/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid account or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrPasswordTooShort   = errors.New("new password must be at least 4 characters")
	ErrMissingFields      = errors.New("all password fields are required")
)

// AuthService handles login and password changes
type AuthService struct {
	userRepo       *repository.UserRepository
	mirror         *mirror.Mirror
	teacherAccount string
}

// NewAuthService creates a new auth service. mirror may be nil (disabled).
func NewAuthService(userRepo *repository.UserRepository, m *mirror.Mirror, teacherAccount string) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		mirror:         m,
		teacherAccount: teacherAccount,
	}
}

// Login authenticates by exact trimmed string equality against the users
// workbook and builds the session bag for the cookie
func (s *AuthService) Login(account, password string) (*models.Session, error) {
	user, err := s.userRepo.Authenticate(account, password)
	if err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	name := user.Name
	if name == "" {
		name = user.Account
	}
	return &models.Session{
		Account:     user.Account,
		Name:        name,
		TotalPoints: user.TotalPoints,
		Teacher:     user.Account == s.teacherAccount,
	}, nil
}

// ChangePassword verifies the current password, updates the users workbook
// and replicates the change to the mirror (best-effort)
func (s *AuthService) ChangePassword(account, current, newPassword, confirm string) error {
	if strings.TrimSpace(current) == "" || strings.TrimSpace(newPassword) == "" || strings.TrimSpace(confirm) == "" {
		return ErrMissingFields
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < 4 {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindUser(account)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	if user.Password != strings.TrimSpace(current) {
		return ErrWrongPassword
	}

	if err := s.userRepo.UpdatePassword(account, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.mirror.EnqueuePasswordUpdate(account, newPassword)
	return nil
}
