// Package user contains the account entity used for authentication.
// The content core treats accounts as an identity collaborator only.
package user

import (
	"strings"
	"time"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// Account is a registered learner account.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks registration input.
func ValidateCredentials(email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return shared.WrapError("user", "Validate", shared.ErrValidation, "a valid email is required", nil)
	}
	if len(password) < 8 {
		return shared.WrapError("user", "Validate", shared.ErrValidation, "password must be at least 8 characters", nil)
	}
	return nil
}
