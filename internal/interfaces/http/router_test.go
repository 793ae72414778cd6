package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/email"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/migration"
	httpRouter "github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "Secret123"
)

var tokenParam = regexp.MustCompile(`\?token=([^\s"'<>)\]]+)`)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	outbox *email.MemorySender
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	manager, err := migration.NewManager("sqlite", migration.StrategyGoose)
	require.NoError(t, err)
	require.NoError(t, manager.Migrate(context.Background(), gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg, err := config.Load("test", t.TempDir())
	require.NoError(t, err)
	cfg.Database.Driver = "sqlite"
	cfg.Email.Backend = email.BackendMemory
	cfg.Auth.Password.BcryptCost = 4
	cfg.Auth.RateLimit.Enabled = false

	router, err := httpRouter.NewRouter(gdb, rdb, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	router.SetupRoutes()
	t.Cleanup(router.Shutdown)

	outbox, ok := router.Sender().(*email.MemorySender)
	require.True(t, ok)

	return &apiClient{t: t, engine: router.GetEngine(), outbox: outbox}
}

func (a *apiClient) do(method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// mailedToken returns the token from the last link mailed to addr.
func (a *apiClient) mailedToken(addr string) string {
	a.t.Helper()
	msg, ok := a.outbox.Last(addr)
	require.True(a.t, ok, "no mail sent to %s", addr)

	m := tokenParam.FindStringSubmatch(msg.Text)
	require.Len(a.t, m, 2, "no token link in %q", msg.Text)
	tok, err := url.QueryUnescape(m[1])
	require.NoError(a.t, err)
	return tok
}

func authCookies(w *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	for _, ck := range w.Result().Cookies() {
		switch ck.Name {
		case utils.AccessTokenCookie:
			access = ck
		case utils.RefreshTokenCookie:
			refresh = ck
		}
	}
	return access, refresh
}

func (a *apiClient) registerAndVerify() {
	a.t.Helper()

	w, _ := a.do(http.MethodPost, "/api/auth/registration", map[string]string{
		"email":      aliceEmail,
		"password1":  alicePassword,
		"password2":  alicePassword,
		"first_name": "Alice",
		"last_name":  "Liddell",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": alicePassword})
	require.Equal(a.t, http.StatusForbidden, w.Code)
	assert.Equal(a.t, string(errors.ReasonEmailNotVerified), env.Error.Reason)

	w, _ = a.do(http.MethodPost, "/api/auth/registration/verify-email", map[string]string{"key": a.mailedToken(aliceEmail)})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	w, env := api.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"database":"up","redis":"up"}`, string(env.Data))
}

func TestSessionLifecycle(t *testing.T) {
	api := newAPI(t)
	api.registerAndVerify()

	// login sets both cookies
	w, env := api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": alicePassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	access, refresh := authCookies(w)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)

	w, env = api.do(http.MethodGet, "/api/auth/user", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	var user struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, aliceEmail, user.Email)
	assert.True(t, user.EmailVerified)

	// refresh rotates both tokens
	w, _ = api.do(http.MethodPost, "/api/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	newAccess, newRefresh := authCookies(w)
	require.NotNil(t, newAccess)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, access.Value, newAccess.Value)
	assert.NotEqual(t, refresh.Value, newRefresh.Value)

	// the rotated-out refresh token is dead
	w, env = api.do(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": refresh.Value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(errors.ReasonTokenBlacklisted), env.Error.Reason)

	// logout revokes the current pair and clears cookies
	w, _ = api.do(http.MethodPost, "/api/auth/logout", nil, newAccess, newRefresh)
	require.Equal(t, http.StatusOK, w.Code)
	cleared, _ := authCookies(w)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	w, env = api.do(http.MethodGet, "/api/auth/user", nil, newAccess)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(errors.ReasonTokenBlacklisted), env.Error.Reason)

	w, env = api.do(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh": newRefresh.Value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(errors.ReasonTokenBlacklisted), env.Error.Reason)
}

func TestPasswordResetFlow(t *testing.T) {
	api := newAPI(t)
	api.registerAndVerify()

	w, _ := api.do(http.MethodPost, "/api/auth/password/reset", map[string]string{"email": aliceEmail})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resetToken := api.mailedToken(aliceEmail)

	w, _ = api.do(http.MethodPost, "/api/auth/password/reset/confirm", map[string]string{
		"token":         resetToken,
		"new_password1": "Looking-glass-7",
		"new_password2": "Looking-glass-7",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the reset token is single use
	w, _ = api.do(http.MethodPost, "/api/auth/password/reset/confirm", map[string]string{
		"token":         resetToken,
		"new_password1": "Another-pass-8",
		"new_password2": "Another-pass-8",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": alicePassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(errors.ReasonInvalidCredentials), env.Error.Reason)

	w, _ = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": "Looking-glass-7"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequirePermission(t *testing.T) {
	api := newAPI(t)

	w, _ := api.do(http.MethodGet, "/api/admin/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	api.registerAndVerify()
	w, _ = api.do(http.MethodPost, "/api/auth/login", map[string]string{"email": aliceEmail, "password": alicePassword})
	require.Equal(t, http.StatusOK, w.Code)
	access, _ := authCookies(w)

	w, env := api.do(http.MethodGet, "/api/admin/accounts", nil, access)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
}

func TestUnknownProvider(t *testing.T) {
	api := newAPI(t)

	w, _ := api.do(http.MethodGet, "/api/auth/social/myspace/login", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
