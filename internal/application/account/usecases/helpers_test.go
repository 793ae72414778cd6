package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/tokens"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/auth"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/cache"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/repository"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
)

const strongPassword = "Secret123"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentMail struct {
	Kind  string
	To    string
	Token string
}

// recordingMailer keeps every message and can be told to fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) record(kind, to, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{Kind: kind, To: to, Token: tok})
	return nil
}

func (m *recordingMailer) SendVerification(_ context.Context, to, _, tok string, _ time.Duration) error {
	return m.record("verify", to, tok)
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, _, tok string, _ time.Duration) error {
	return m.record("reset", to, tok)
}

func (m *recordingMailer) SendPasswordChanged(_ context.Context, to, _ string) error {
	return m.record("changed", to, "")
}

func (m *recordingMailer) failWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *recordingMailer) last(kind string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

func (m *recordingMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type mockProvider struct {
	mock.Mock
}

func (p *mockProvider) Name() string { return "google" }

func (p *mockProvider) AuthURL(state, verifier string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (p *mockProvider) Exchange(ctx context.Context, code, verifier string) (string, error) {
	args := p.Called(code, verifier)
	return args.String(0), args.Error(1)
}

func (p *mockProvider) FetchIdentity(ctx context.Context, accessToken string) (*account.ExternalIdentity, error) {
	args := p.Called(accessToken)
	identity, _ := args.Get(0).(*account.ExternalIdentity)
	return identity, args.Error(1)
}

// env wires the use cases over sqlite, miniredis and a real JWT codec.
type env struct {
	t         *testing.T
	clock     *testClock
	accounts  *repository.AccountRepository
	links     *repository.SocialLinkRepository
	vtokens   *repository.VerificationTokenRepository
	blacklist *repository.TokenBlacklistRepository
	tx        *db.TransactionManager
	hasher    *auth.BcryptPasswordHasher
	policy    *vo.PasswordPolicy
	mailer    *recordingMailer
	tokens    *tokens.Service
	states    *cache.RedisStateStore
	provider  *mockProvider
	settings  FlowSettings
	log       logger.Interface
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.NewNopLogger()
	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	blacklist := repository.NewTokenBlacklistRepository(gdb, log)
	codec := auth.NewJWTService("test-secret", "userauth-test", 30*time.Minute, 7*24*time.Hour).WithClock(clock.Now)

	return &env{
		t:         t,
		clock:     clock,
		accounts:  repository.NewAccountRepository(gdb, log),
		links:     repository.NewSocialLinkRepository(gdb, log),
		vtokens:   repository.NewVerificationTokenRepository(gdb, log),
		blacklist: blacklist,
		tx:        db.NewTransactionManager(gdb),
		hasher:    auth.NewBcryptPasswordHasher(bcrypt.MinCost),
		policy:    vo.DefaultPasswordPolicy(),
		mailer:    &recordingMailer{},
		tokens:    tokens.NewService(codec, blacklist, log),
		states:    cache.NewRedisStateStore(rdb, "test", 10*time.Minute),
		provider:  &mockProvider{},
		settings: FlowSettings{
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
			NoticeTimeout:   time.Second,
		},
		log: log,
	}
}

func (e *env) register() *RegisterUseCase {
	uc := NewRegisterUseCase(e.accounts, e.vtokens, e.hasher, e.policy, e.mailer, e.tx, e.settings, e.log)
	uc.now = e.clock.Now
	return uc
}

func (e *env) verifyEmail() *VerifyEmailUseCase {
	uc := NewVerifyEmailUseCase(e.accounts, e.vtokens, e.tx, e.log)
	uc.now = e.clock.Now
	return uc
}

func (e *env) login() *LoginUseCase {
	uc := NewLoginUseCase(e.accounts, e.hasher, e.tokens, e.log)
	uc.now = e.clock.Now
	return uc
}

func (e *env) providers() *auth.ProviderRegistry {
	return auth.NewProviderRegistry(e.provider)
}

func (e *env) oauthCallback() *HandleOAuthCallbackUseCase {
	uc := NewHandleOAuthCallbackUseCase(e.providers(), e.states, e.accounts, e.links, e.tokens, e.tx,
		retry.Policy{Backoff: time.Millisecond}, e.log)
	uc.now = e.clock.Now
	return uc
}

// activeAccount registers and verifies an account through the public flows.
func (e *env) activeAccount(email string) *account.Account {
	e.t.Helper()
	ctx := context.Background()
	_, err := e.register().Execute(ctx, RegisterCommand{
		Email:     email,
		Password1: strongPassword,
		Password2: strongPassword,
	})
	require.NoError(e.t, err)

	mail, ok := e.mailer.last("verify")
	require.True(e.t, ok)
	acct, err := e.verifyEmail().Execute(ctx, VerifyEmailCommand{Key: mail.Token})
	require.NoError(e.t, err)
	return acct
}

func stateFromURL(t *testing.T, authURL string) string {
	t.Helper()
	i := strings.Index(authURL, "state=")
	require.GreaterOrEqual(t, i, 0)
	return authURL[i+len("state="):]
}

var errSMTPDown = errors.New("smtp: connection refused")
