package constants

const (
	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"

	// Context keys set by the auth middleware
	ContextKeyAccountID  = "account_id"
	ContextKeyAccountSID = "account_sid"
	ContextKeyRoles      = "roles"
	ContextKeyRequestID  = "request_id"
	ContextKeyAccessJTI  = "access_jti"

	// Database table names
	TableAccounts           = "accounts"
	TableSocialLinks        = "social_links"
	TableVerificationTokens = "verification_tokens"
	TableBlacklistedTokens  = "blacklisted_tokens"
	TableCasbinRules        = "casbin_rule"

	ErrMsgInternalServerError = "Internal server error occurred"
)
