package valueobjects

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

//go:embed commonpasswords.txt
var commonPasswordsFile string

var commonPasswords = loadCommonPasswords(commonPasswordsFile)

var nonWordRegex = regexp.MustCompile(`\W+`)

// UserAttribute is a piece of account data a password must not resemble.
type UserAttribute struct {
	Name  string
	Value string
}

// PolicyViolation lists every rule a candidate password broke.
type PolicyViolation struct {
	Problems []string
}

func (v *PolicyViolation) Error() string {
	return strings.Join(v.Problems, " ")
}

// PasswordPolicy holds the strength rules applied when a password is set.
type PasswordPolicy struct {
	MinLength     int
	MaxSimilarity float64
}

func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{MinLength: 8, MaxSimilarity: 0.7}
}

// NewPasswordPolicy overrides the defaults with any positive setting.
func NewPasswordPolicy(minLength int, maxSimilarity float64) *PasswordPolicy {
	p := DefaultPasswordPolicy()
	if minLength > 0 {
		p.MinLength = minLength
	}
	if maxSimilarity > 0 {
		p.MaxSimilarity = maxSimilarity
	}
	return p
}

// Validate checks password against every rule and returns a *PolicyViolation
// listing all failures, or nil.
func (p *PasswordPolicy) Validate(password string, attrs ...UserAttribute) error {
	var problems []string

	if utf8.RuneCountInString(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("This password is too long. It must not exceed %d bytes.", maxPasswordBytes))
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if name, ok := p.similarAttribute(password, attrs); ok {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", name))
	}

	if len(problems) > 0 {
		return &PolicyViolation{Problems: problems}
	}
	return nil
}

func (p *PasswordPolicy) similarAttribute(password string, attrs []UserAttribute) (string, bool) {
	if p.MaxSimilarity <= 0 || password == "" {
		return "", false
	}
	pw := strings.ToLower(password)
	for _, attr := range attrs {
		if attr.Value == "" {
			continue
		}
		value := strings.ToLower(attr.Value)
		parts := append(nonWordRegex.Split(value, -1), value)
		for _, part := range parts {
			if part == "" || exceedsLengthRatio(pw, part, p.MaxSimilarity) {
				continue
			}
			if quickRatio(pw, part) >= p.MaxSimilarity {
				return attr.Name, true
			}
		}
	}
	return "", false
}

// exceedsLengthRatio skips attribute parts so short relative to the password
// that no similarity above the limit is possible.
func exceedsLengthRatio(password, part string, maxSimilarity float64) bool {
	pwLen := utf8.RuneCountInString(password)
	partLen := utf8.RuneCountInString(part)
	bound := maxSimilarity / 2 * float64(pwLen)
	return pwLen >= 10*partLen && float64(partLen) < bound
}

// quickRatio is an upper bound on the matching-blocks ratio of two strings:
// twice the size of their character multiset intersection over their total
// length.
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func loadCommonPasswords(data string) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line != "" && !strings.HasPrefix(line, "#") {
			set[line] = struct{}{}
		}
	}
	return set
}
