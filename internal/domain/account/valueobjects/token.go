package valueobjects

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

// Token is an opaque single-use secret. Only its hash is persisted; the
// plaintext value travels in emailed links.
type Token struct {
	value string
	hash  string
}

func NewToken() (*Token, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	value := hex.EncodeToString(b)
	return &Token{value: value, hash: HashToken(value)}, nil
}

// NewTokenFromValue parses a token presented by a client.
func NewTokenFromValue(value string) (*Token, error) {
	if len(value) != tokenBytes*2 {
		return nil, fmt.Errorf("invalid token length")
	}
	if _, err := hex.DecodeString(value); err != nil {
		return nil, fmt.Errorf("invalid token format")
	}
	return &Token{value: value, hash: HashToken(value)}, nil
}

func (t *Token) Value() string {
	return t.value
}

func (t *Token) Hash() string {
	return t.hash
}

// HashToken returns the hex sha256 of value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
