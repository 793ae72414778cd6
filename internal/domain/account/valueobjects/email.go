package valueobjects

import (
	"fmt"
	"regexp"
	"strings"
)

const maxEmailLength = 254

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is a normalized email address. Addresses are stored fully lowercased,
// so uniqueness is case-insensitive.
type Email struct {
	value string
}

// NewEmail trims, lowercases and validates value.
func NewEmail(value string) (*Email, error) {
	normalized := NormalizeEmail(value)

	if normalized == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}
	if len(normalized) > maxEmailLength {
		return nil, fmt.Errorf("email cannot exceed %d characters", maxEmailLength)
	}
	if !emailRegex.MatchString(normalized) {
		return nil, fmt.Errorf("invalid email format: %s", value)
	}

	return &Email{value: normalized}, nil
}

// NormalizeEmail is the normalization applied before any lookup or
// uniqueness comparison.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func (e *Email) String() string {
	return e.value
}

func (e *Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}
