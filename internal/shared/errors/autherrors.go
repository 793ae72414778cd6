package errors

import (
	stderrors "errors"
	"net/http"
)

// Reason is a stable machine-readable code for an authentication failure.
type Reason string

const (
	ReasonInvalidCredentials       Reason = "invalid_credentials"
	ReasonAccountInactive          Reason = "account_inactive"
	ReasonEmailNotVerified         Reason = "email_not_verified"
	ReasonDuplicateEmail           Reason = "duplicate_email"
	ReasonWeakPassword             Reason = "weak_password"
	ReasonTokenExpired             Reason = "token_expired"
	ReasonTokenBlacklisted         Reason = "token_blacklisted"
	ReasonTokenMalformed           Reason = "token_malformed"
	ReasonTokenSignatureInvalid    Reason = "token_signature_invalid"
	ReasonInvalidRefreshToken      Reason = "invalid_refresh_token"
	ReasonInvalidState             Reason = "invalid_state"
	ReasonProviderError            Reason = "provider_error"
	ReasonEmailNotVerifiedUpstream Reason = "email_not_verified_upstream"
	ReasonVerificationExpired      Reason = "verification_token_expired"
	ReasonVerificationInvalid      Reason = "verification_token_invalid"
	ReasonDeliveryError            Reason = "delivery_error"
)

// AuthError represents an authentication or account lifecycle failure.
type AuthError struct {
	*AppError
	Reason Reason
	// SecurityEvent marks failures worth tracking (replayed tokens, brute force).
	SecurityEvent bool
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.As to reach the embedded AppError
func (e *AuthError) Unwrap() error {
	return e.AppError
}

// Is reports whether target is an AuthError with the same reason, so the
// exported sentinels below work with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

func newAuthError(reason Reason, t ErrorType, code int, message string, security bool, details []string) *AuthError {
	return &AuthError{
		AppError:      newAppError(t, code, message, details),
		Reason:        reason,
		SecurityEvent: security,
	}
}

// Sentinels for errors.Is comparisons. Use the constructors to return errors
// with details.
var (
	ErrInvalidCredentials       = NewInvalidCredentialsError()
	ErrAccountInactive          = NewAccountInactiveError()
	ErrEmailNotVerified         = NewEmailNotVerifiedError()
	ErrDuplicateEmail           = NewDuplicateEmailError()
	ErrWeakPassword             = NewWeakPasswordError()
	ErrTokenExpired             = NewTokenExpiredError()
	ErrTokenBlacklisted         = NewTokenBlacklistedError()
	ErrTokenMalformed           = NewTokenMalformedError()
	ErrTokenSignatureInvalid    = NewTokenSignatureInvalidError()
	ErrInvalidRefreshToken      = NewInvalidRefreshTokenError()
	ErrInvalidState             = NewInvalidStateError()
	ErrProviderError            = NewProviderError("")
	ErrEmailNotVerifiedUpstream = NewEmailNotVerifiedUpstreamError()
	ErrVerificationExpired      = NewVerificationExpiredError()
	ErrVerificationInvalid      = NewVerificationInvalidError()
	ErrDeliveryError            = NewDeliveryError()
)

// NewInvalidCredentialsError does not reveal whether the email or the password was wrong.
func NewInvalidCredentialsError() *AuthError {
	return newAuthError(ReasonInvalidCredentials, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"invalid email or password", true, nil)
}

func NewAccountInactiveError(details ...string) *AuthError {
	return newAuthError(ReasonAccountInactive, ErrorTypeForbidden, http.StatusForbidden,
		"account is not active", false, details)
}

func NewEmailNotVerifiedError(details ...string) *AuthError {
	return newAuthError(ReasonEmailNotVerified, ErrorTypeForbidden, http.StatusForbidden,
		"email address is not verified", false, details)
}

func NewDuplicateEmailError(details ...string) *AuthError {
	return newAuthError(ReasonDuplicateEmail, ErrorTypeConflict, http.StatusConflict,
		"an account with this email already exists", false, details)
}

func NewWeakPasswordError(details ...string) *AuthError {
	return newAuthError(ReasonWeakPassword, ErrorTypeValidation, http.StatusBadRequest,
		"password is too weak", false, details)
}

func NewTokenExpiredError(details ...string) *AuthError {
	return newAuthError(ReasonTokenExpired, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"token has expired", false, details)
}

func NewTokenBlacklistedError(details ...string) *AuthError {
	return newAuthError(ReasonTokenBlacklisted, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"token has been revoked", true, details)
}

func NewTokenMalformedError(details ...string) *AuthError {
	return newAuthError(ReasonTokenMalformed, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"token is malformed", false, details)
}

func NewTokenSignatureInvalidError(details ...string) *AuthError {
	return newAuthError(ReasonTokenSignatureInvalid, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"token signature is invalid", true, details)
}

func NewInvalidRefreshTokenError(details ...string) *AuthError {
	return newAuthError(ReasonInvalidRefreshToken, ErrorTypeUnauthorized, http.StatusUnauthorized,
		"invalid refresh token", false, details)
}

func NewInvalidStateError(details ...string) *AuthError {
	return newAuthError(ReasonInvalidState, ErrorTypeValidation, http.StatusBadRequest,
		"invalid or expired oauth state", true, details)
}

// NewProviderError reports a failed exchange or profile fetch with an OAuth provider.
func NewProviderError(provider string, details ...string) *AuthError {
	msg := "oauth provider request failed"
	if provider != "" {
		msg = provider + " oauth request failed"
	}
	return newAuthError(ReasonProviderError, ErrorTypeUpstream, http.StatusBadGateway, msg, false, details)
}

func NewEmailNotVerifiedUpstreamError(details ...string) *AuthError {
	return newAuthError(ReasonEmailNotVerifiedUpstream, ErrorTypeForbidden, http.StatusForbidden,
		"email is not verified by the provider", false, details)
}

func NewVerificationExpiredError(details ...string) *AuthError {
	return newAuthError(ReasonVerificationExpired, ErrorTypeValidation, http.StatusBadRequest,
		"token has expired", false, details)
}

func NewVerificationInvalidError(details ...string) *AuthError {
	return newAuthError(ReasonVerificationInvalid, ErrorTypeValidation, http.StatusBadRequest,
		"invalid token", false, details)
}

func NewDeliveryError(details ...string) *AuthError {
	return newAuthError(ReasonDeliveryError, ErrorTypeUpstream, http.StatusBadGateway,
		"email delivery failed", false, details)
}

// GetAuthError extracts AuthError from error
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ReasonOf returns the auth failure reason, or "" for other errors.
func ReasonOf(err error) Reason {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.Reason
	}
	return ""
}

// IsSecurityEvent checks if an error should be tracked as a security event
func IsSecurityEvent(err error) bool {
	authErr := GetAuthError(err)
	return authErr != nil && authErr.SecurityEvent
}
