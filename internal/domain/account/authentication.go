package account

import (
	"time"

	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

// PasswordHasher produces and checks salted one-way password hashes.
// Verify must compare in constant time and return an error on mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// passwordAttributes are the account fields a password must not resemble.
func (a *Account) passwordAttributes() []vo.UserAttribute {
	return []vo.UserAttribute{
		{Name: "email address", Value: a.email.String()},
		{Name: "first name", Value: a.firstName},
		{Name: "last name", Value: a.lastName},
	}
}

// ValidatePassword runs the strength policy without changing the account.
func (a *Account) ValidatePassword(password string, policy *vo.PasswordPolicy) error {
	if err := policy.Validate(password, a.passwordAttributes()...); err != nil {
		return errors.NewWeakPasswordError(err.Error())
	}
	return nil
}

// SetPassword validates password against policy and stores its hash. It fails
// with a WeakPassword error when any rule is broken.
func (a *Account) SetPassword(password string, policy *vo.PasswordPolicy, hasher PasswordHasher, now time.Time) error {
	if err := a.ValidatePassword(password, policy); err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	a.passwordHash = &hash
	a.touch(now)
	return nil
}

// VerifyPassword reports whether password matches the stored hash. Accounts
// without a password never match.
func (a *Account) VerifyPassword(password string, hasher PasswordHasher) bool {
	if !a.HasPassword() {
		return false
	}
	return hasher.Verify(password, *a.passwordHash) == nil
}

// ChangePassword replaces the password after checking the current one.
func (a *Account) ChangePassword(oldPassword, newPassword string, policy *vo.PasswordPolicy, hasher PasswordHasher, now time.Time) error {
	if !a.VerifyPassword(oldPassword, hasher) {
		return errors.NewValidationError("old password is incorrect")
	}
	return a.SetPassword(newPassword, policy, hasher, now)
}
