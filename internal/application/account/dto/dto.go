package dto

import (
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
)

// RegisterRequest represents the registration form
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name" binding:"omitempty,max=150"`
	LastName  string `json:"last_name" binding:"omitempty,max=150"`
}

// VerifyEmailRequest carries the key from the verification link
type VerifyEmailRequest struct {
	Key string `json:"key" binding:"required"`
}

// EmailRequest is used by resend-email and password reset
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is optional; the refresh_token cookie takes precedence.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type PasswordResetConfirmRequest struct {
	Token        string `json:"token" binding:"required"`
	NewPassword1 string `json:"new_password1" binding:"required"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}

type PasswordChangeRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`
	NewPassword1 string `json:"new_password1" binding:"required"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=150"`
}

// OAuthCompleteRequest is the SPA variant of the provider callback
type OAuthCompleteRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// ListAccountsRequest represents the admin listing query
type ListAccountsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// AccountResponse is the public view of an account. ID is the account's sid.
type AccountResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	IsActive      bool       `json:"is_active"`
	IsStaff       bool       `json:"is_staff"`
	EmailVerified bool       `json:"email_verified"`
	HasPassword   bool       `json:"has_password"`
	DateJoined    time.Time  `json:"date_joined"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// AdminAccountResponse adds the fields only admins see
type AdminAccountResponse struct {
	AccountResponse
	IsSuperuser bool       `json:"is_superuser"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type ListAccountsResponse struct {
	Accounts []*AdminAccountResponse `json:"accounts"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// TokenResponse is returned to clients that cannot read cookies
type TokenResponse struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginResponse is the body of login, refresh and social completion
type LoginResponse struct {
	User   *AccountResponse `json:"user,omitempty"`
	Tokens *TokenResponse   `json:"tokens"`
}

func ToAccountResponse(a *account.Account) *AccountResponse {
	if a == nil {
		return nil
	}
	return &AccountResponse{
		ID:            a.SID(),
		Email:         a.Email().String(),
		FirstName:     a.FirstName(),
		LastName:      a.LastName(),
		IsActive:      a.IsActive(),
		IsStaff:       a.IsStaff(),
		EmailVerified: a.IsEmailVerified(),
		HasPassword:   a.HasPassword(),
		DateJoined:    a.DateJoined(),
		LastLogin:     a.LastLogin(),
	}
}

func ToAdminAccountResponse(a *account.Account) *AdminAccountResponse {
	if a == nil {
		return nil
	}
	return &AdminAccountResponse{
		AccountResponse: *ToAccountResponse(a),
		IsSuperuser:     a.IsSuperuser(),
		DeletedAt:       a.DeletedAt(),
	}
}

func ToTokenResponse(p *token.Pair) *TokenResponse {
	if p == nil || p.Access == nil || p.Refresh == nil {
		return nil
	}
	return &TokenResponse{
		Access:           p.Access.Value,
		Refresh:          p.Refresh.Value,
		AccessExpiresAt:  p.Access.ExpiresAt,
		RefreshExpiresAt: p.Refresh.ExpiresAt,
	}
}
