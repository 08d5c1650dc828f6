// Package auth owns librarian accounts and sessions. It is the only place
// that sees raw credentials; everything downstream of it works with an
// already-resolved librarian id.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrLibrarianNotFound = errors.New("librarian not found")
	ErrLibrarianExists   = errors.New("librarian already exists")
	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrAccountLocked     = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid   = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// Service handles librarian signup and authentication.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{db: db, config: cfg}
}

// Signup creates a new librarian account with a hashed password.
func (s *Service) Signup(username, firstName, lastName, password string) (*entities.Librarian, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	var existing entities.Librarian
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrLibrarianExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing librarian: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	librarian := &entities.Librarian{
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(librarian).Error; err != nil {
		return nil, fmt.Errorf("failed to create librarian: %w", err)
	}
	return librarian, nil
}

// Authenticate validates credentials and returns the librarian.
// Implements account lockout after too many failed attempts.
func (s *Service) Authenticate(username, password string) (*entities.Librarian, error) {
	var librarian entities.Librarian
	err := s.db.Where("username = ?", username).First(&librarian).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibrarianNotFound
		}
		return nil, fmt.Errorf("failed to find librarian: %w", err)
	}

	if librarian.LockedUntil != nil && time.Now().Before(*librarian.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, librarian.PasswordHash); err != nil {
		s.recordFailedLogin(&librarian)
		return nil, err
	}

	now := time.Now()
	s.db.Model(&librarian).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})

	return &librarian, nil
}

// recordFailedLogin increments the failure counter and locks the account
// once the threshold is reached.
func (s *Service) recordFailedLogin(librarian *entities.Librarian) {
	librarian.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": librarian.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	if librarian.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := time.Now().Add(lockoutDuration)
		updates["locked_until"] = lockedUntil
	}

	s.db.Model(librarian).Updates(updates)
}

// GetLibrarianByID retrieves a librarian by id.
func (s *Service) GetLibrarianByID(id uint) (*entities.Librarian, error) {
	var librarian entities.Librarian
	err := s.db.First(&librarian, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibrarianNotFound
		}
		return nil, err
	}
	return &librarian, nil
}

// UpdateProfile edits the librarian's name fields.
func (s *Service) UpdateProfile(id uint, firstName, lastName string) (*entities.Librarian, error) {
	librarian, err := s.GetLibrarianByID(id)
	if err != nil {
		return nil, err
	}
	librarian.FirstName = firstName
	librarian.LastName = lastName
	if err := s.db.Save(librarian).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return librarian, nil
}

// ChangePassword updates a librarian's password after verifying the old one.
func (s *Service) ChangePassword(id uint, oldPassword, newPassword string) error {
	librarian, err := s.GetLibrarianByID(id)
	if err != nil {
		return err
	}
	if err := CheckPassword(oldPassword, librarian.PasswordHash); err != nil {
		return err
	}
	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.db.Model(librarian).Update("password_hash", newHash).Error
}

// HasLibrarians returns true if any accounts exist.
func (s *Service) HasLibrarians() (bool, error) {
	var count int64
	err := s.db.Model(&entities.Librarian{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
