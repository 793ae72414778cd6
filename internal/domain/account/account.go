package account

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/id"
)

// Account is the aggregate root for a user identity. The email is the only
// login identifier. Accounts are never hard-deleted: SoftDelete clears the
// active flag and the row stays.
type Account struct {
	id            uint
	sid           string
	email         *vo.Email
	firstName     string
	lastName      string
	passwordHash  *string
	isActive      bool
	isStaff       bool
	isSuperuser   bool
	emailVerified bool
	dateJoined    time.Time
	lastLogin     *time.Time
	deletedAt     *time.Time
	updatedAt     time.Time
	version       int
	// storedVersion is the version last read from or written to storage.
	storedVersion int
}

// Data is the persisted shape of an Account, used by mappers.
type Data struct {
	ID            uint
	SID           string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  *string
	IsActive      bool
	IsStaff       bool
	IsSuperuser   bool
	EmailVerified bool
	DateJoined    time.Time
	LastLogin     *time.Time
	DeletedAt     *time.Time
	UpdatedAt     time.Time
	Version       int
}

// NewAccount creates an inactive, unverified account without a password.
// Registration activates it through email verification.
func NewAccount(email *vo.Email, firstName, lastName string, now time.Time) (*Account, error) {
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}
	first, err := vo.NormalizeName(firstName)
	if err != nil {
		return nil, errors.NewValidationError("invalid first name", err.Error())
	}
	last, err := vo.NormalizeName(lastName)
	if err != nil {
		return nil, errors.NewValidationError("invalid last name", err.Error())
	}
	sid, err := id.NewAccountID()
	if err != nil {
		return nil, err
	}

	return &Account{
		sid:           sid,
		email:         email,
		firstName:     first,
		lastName:      last,
		dateJoined:    now,
		updatedAt:     now,
		version:       1,
		storedVersion: 1,
	}, nil
}

// NewSocialAccount creates an account for a first-time provider login. The
// provider already vouched for the email, so the account starts active and
// verified, with no usable password.
func NewSocialAccount(email *vo.Email, firstName, lastName string, now time.Time) (*Account, error) {
	a, err := NewAccount(email, firstName, lastName, now)
	if err != nil {
		return nil, err
	}
	a.isActive = true
	a.emailVerified = true
	return a, nil
}

// Reconstruct rebuilds an account from persistence.
func Reconstruct(d Data) (*Account, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("account id cannot be zero")
	}
	email, err := vo.NewEmail(d.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid stored email: %w", err)
	}
	return &Account{
		id:            d.ID,
		sid:           d.SID,
		email:         email,
		firstName:     d.FirstName,
		lastName:      d.LastName,
		passwordHash:  d.PasswordHash,
		isActive:      d.IsActive,
		isStaff:       d.IsStaff,
		isSuperuser:   d.IsSuperuser,
		emailVerified: d.EmailVerified,
		dateJoined:    d.DateJoined,
		lastLogin:     d.LastLogin,
		deletedAt:     d.DeletedAt,
		updatedAt:     d.UpdatedAt,
		version:       d.Version,
		storedVersion: d.Version,
	}, nil
}

// Data returns a snapshot for persistence.
func (a *Account) Data() Data {
	return Data{
		ID:            a.id,
		SID:           a.sid,
		Email:         a.email.String(),
		FirstName:     a.firstName,
		LastName:      a.lastName,
		PasswordHash:  a.passwordHash,
		IsActive:      a.isActive,
		IsStaff:       a.isStaff,
		IsSuperuser:   a.isSuperuser,
		EmailVerified: a.emailVerified,
		DateJoined:    a.dateJoined,
		LastLogin:     a.lastLogin,
		DeletedAt:     a.deletedAt,
		UpdatedAt:     a.updatedAt,
		Version:       a.version,
	}
}

func (a *Account) ID() uint               { return a.id }
func (a *Account) SID() string            { return a.sid }
func (a *Account) Email() *vo.Email       { return a.email }
func (a *Account) FirstName() string      { return a.firstName }
func (a *Account) LastName() string       { return a.lastName }
func (a *Account) IsActive() bool         { return a.isActive }
func (a *Account) IsStaff() bool          { return a.isStaff }
func (a *Account) IsSuperuser() bool      { return a.isSuperuser }
func (a *Account) IsEmailVerified() bool  { return a.emailVerified }
func (a *Account) DateJoined() time.Time  { return a.dateJoined }
func (a *Account) LastLogin() *time.Time  { return a.lastLogin }
func (a *Account) DeletedAt() *time.Time  { return a.deletedAt }
func (a *Account) UpdatedAt() time.Time   { return a.updatedAt }
func (a *Account) Version() int           { return a.version }
func (a *Account) IsDeleted() bool        { return a.deletedAt != nil }
func (a *Account) HasPassword() bool      { return a.passwordHash != nil && *a.passwordHash != "" }

// FullName joins first and last name, falling back to the email local part.
func (a *Account) FullName() string {
	name := strings.TrimSpace(a.firstName + " " + a.lastName)
	if name == "" {
		return a.email.LocalPart()
	}
	return name
}

// SetID is called once by the repository after insert.
func (a *Account) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("account id is already set")
	}
	if id == 0 {
		return fmt.Errorf("account id cannot be zero")
	}
	a.id = id
	return nil
}

func (a *Account) UpdateProfile(firstName, lastName string, now time.Time) error {
	first, err := vo.NormalizeName(firstName)
	if err != nil {
		return errors.NewValidationError("invalid first name", err.Error())
	}
	last, err := vo.NormalizeName(lastName)
	if err != nil {
		return errors.NewValidationError("invalid last name", err.Error())
	}
	if first == a.firstName && last == a.lastName {
		return nil
	}
	a.firstName = first
	a.lastName = last
	a.touch(now)
	return nil
}

// MarkEmailVerified verifies the email and activates the account. A deleted
// account stays deleted.
func (a *Account) MarkEmailVerified(now time.Time) error {
	if a.IsDeleted() {
		return errors.NewAccountInactiveError("account has been deleted")
	}
	if a.emailVerified && a.isActive {
		return nil
	}
	a.emailVerified = true
	a.isActive = true
	a.touch(now)
	return nil
}

// SoftDelete deactivates the account. Calling it again is a no-op.
func (a *Account) SoftDelete(now time.Time) {
	if !a.isActive && a.IsDeleted() {
		return
	}
	a.isActive = false
	if a.deletedAt == nil {
		t := now
		a.deletedAt = &t
	}
	a.touch(now)
}

// GrantSuperuser makes the account an active, verified staff superuser.
func (a *Account) GrantSuperuser(now time.Time) {
	a.isStaff = true
	a.isSuperuser = true
	a.isActive = true
	a.emailVerified = true
	a.deletedAt = nil
	a.touch(now)
}

func (a *Account) SetStaff(staff bool, now time.Time) {
	if a.isStaff == staff {
		return
	}
	a.isStaff = staff
	a.touch(now)
}

func (a *Account) RecordLogin(now time.Time) {
	t := now
	a.lastLogin = &t
	a.touch(now)
}

// CanAuthenticate reports why the account may not start a session.
func (a *Account) CanAuthenticate() error {
	if a.IsDeleted() {
		return errors.NewAccountInactiveError()
	}
	if !a.emailVerified {
		return errors.NewEmailNotVerifiedError()
	}
	if !a.isActive {
		return errors.NewAccountInactiveError()
	}
	return nil
}

// Roles lists the authorization roles held by the account.
func (a *Account) Roles() []string {
	var roles []string
	if a.isSuperuser {
		roles = append(roles, RoleAdmin)
	}
	if a.isStaff {
		roles = append(roles, RoleStaff)
	}
	return roles
}

// StoredVersion is the version an optimistic update must find in storage.
func (a *Account) StoredVersion() int { return a.storedVersion }

// HasChanges reports whether the account was mutated since it was loaded or saved.
func (a *Account) HasChanges() bool { return a.version != a.storedVersion }

// MarkStored is called by the repository after a successful write.
func (a *Account) MarkStored() { a.storedVersion = a.version }

func (a *Account) touch(now time.Time) {
	a.updatedAt = now
	a.version++
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
