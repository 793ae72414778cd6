package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 150

// NormalizeName trims a first or last name and enforces the length limit.
// Empty names are allowed; accounts created through a provider may have none.
func NormalizeName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("name cannot exceed %d characters", maxNameLength)
	}
	return name, nil
}
