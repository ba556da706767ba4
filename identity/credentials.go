package identity

import (
	"fmt"
	"net/mail"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/subiehq/subie/internal/errors"
)

// Credential is a stored identifier/secret pair plus the metadata the
// provider hands out with every session minted for this subject.
type Credential struct {
	SubjectID    string    `json:"subject_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	Metadata     Metadata  `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login,omitempty"`
}

// ValidateSecretStrength checks if a secret meets policy:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidateSecretStrength(secret string) error {
	if len(secret) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", apperrors.ErrWeakSecret)
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range secret {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("%w: must contain at least one uppercase letter", apperrors.ErrWeakSecret)
	}
	if !hasLower {
		return fmt.Errorf("%w: must contain at least one lowercase letter", apperrors.ErrWeakSecret)
	}
	if !hasNumber {
		return fmt.Errorf("%w: must contain at least one number", apperrors.ErrWeakSecret)
	}

	return nil
}

// ValidateIdentifier checks that an identifier is a plausible email address.
func ValidateIdentifier(identifier string) error {
	if _, err := mail.ParseAddress(identifier); err != nil {
		return apperrors.ErrInvalidIdentifier
	}
	return nil
}

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckSecretHash(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
