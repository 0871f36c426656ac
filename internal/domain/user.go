package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// User represents a registered user of the application.
type User struct {
	ID           string
	Name         string
	Email        string
	Avatar       string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}

// Validate checks the fields that are set.
func (p ProfileUpdate) Validate() error {
	if p.Name != nil {
		if err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// AuthResult is returned by login and register.
type AuthResult struct {
	AccessToken string
	User        User
}

// ValidateName enforces the profile name rules.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInput)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name must be 100 characters or fewer", ErrInvalidInput)
	}
	return nil
}

// ValidateEmail performs a shallow shape check; the server owns uniqueness.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(email) > 255 {
		return fmt.Errorf("%w: email must be 255 characters or fewer", ErrInvalidInput)
	}
	local, host, ok := strings.Cut(email, "@")
	if !ok || local == "" || host == "" || strings.Contains(host, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

// ValidatePassword enforces the minimum length for new passwords.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
