// Package token defines the JWT access/refresh token model and the revocation
// list shared by every token consumer.
package token

import (
	"context"
	"time"
)

// Type distinguishes short-lived access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims are the verified contents of a token. Subject is the account's
// public id.
type Claims struct {
	Subject   string
	Type      Type
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issued is a freshly signed token.
type Issued struct {
	Value     string
	Type      Type
	JTI       string
	ExpiresAt time.Time
}

// Pair is what login, refresh and social login hand back to the client.
type Pair struct {
	Access  *Issued
	Refresh *Issued
}

// Codec signs and parses tokens. Parse failures are classified as expired,
// malformed or signature-invalid auth errors.
type Codec interface {
	Issue(subject string, typ Type) (*Issued, error)
	Parse(raw string) (*Claims, error)
	TTL(typ Type) time.Duration
}

// Blacklist records revoked token ids until their natural expiry.
type Blacklist interface {
	// Add records the entry and reports whether this call added it. false
	// means the jti was already blacklisted.
	Add(ctx context.Context, entry BlacklistEntry) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}

// BlacklistEntry describes a revoked token.
type BlacklistEntry struct {
	JTI        string
	Type       Type
	AccountSID string
	ExpiresAt  time.Time
}
