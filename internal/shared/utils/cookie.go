package utils

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookiePolicy decides the attributes of the auth cookies. Both cookies are
// always HttpOnly. Production forces Secure with SameSite=None so a frontend
// on another origin still receives them; elsewhere SameSite is Lax.
type CookiePolicy struct {
	Domain     string
	Path       string
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewCookiePolicy(cookie config.CookieConfig, production bool, accessTTL, refreshTTL time.Duration) CookiePolicy {
	p := CookiePolicy{
		Domain:     cookie.Domain,
		Path:       cookie.Path,
		Secure:     cookie.Secure,
		SameSite:   http.SameSiteLaxMode,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
	if p.Path == "" {
		p.Path = "/"
	}
	if production {
		p.Secure = true
		p.SameSite = http.SameSiteNoneMode
	}
	return p
}

// SetAuthCookies writes both token cookies.
func (p CookiePolicy) SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	p.set(c, AccessTokenCookie, accessToken, p.AccessTTL)
	p.set(c, RefreshTokenCookie, refreshToken, p.RefreshTTL)
}

// ClearAuthCookies expires both token cookies.
func (p CookiePolicy) ClearAuthCookies(c *gin.Context) {
	p.set(c, AccessTokenCookie, "", -1)
	p.set(c, RefreshTokenCookie, "", -1)
}

func (p CookiePolicy) set(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl / time.Second)
	}
	c.SetSameSite(p.SameSite)
	c.SetCookie(name, value, maxAge, p.Path, p.Domain, p.Secure, true)
}

// GetTokenFromCookie returns the cookie value or "".
func GetTokenFromCookie(c *gin.Context, cookieName string) string {
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// GetBearerToken returns the token from "Authorization: Bearer <token>" or "".
func GetBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetAccessToken prefers the access_token cookie over the Authorization header.
func GetAccessToken(c *gin.Context) string {
	if token := GetTokenFromCookie(c, AccessTokenCookie); token != "" {
		return token
	}
	return GetBearerToken(c)
}
