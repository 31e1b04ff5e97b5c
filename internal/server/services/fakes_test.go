package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/cryptox"
	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/server/metadata"
	"github.com/bierclub/bier/internal/server/models"
	"github.com/bierclub/bier/internal/server/repositories/messages"
	"github.com/bierclub/bier/internal/server/repositories/sessions"
	"github.com/bierclub/bier/internal/server/repositories/tokens"
	"github.com/bierclub/bier/internal/server/repositories/users"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- clock ---

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// --- repositories ---

// fakeStore backs all fake repositories. It does not model rollback: rows
// written inside a failed transaction stay visible.
type fakeStore struct {
	mu       sync.Mutex
	nextUser int64
	nextMsg  int64
	users    map[int64]*models.User
	sessions map[uuid.UUID]*models.Session
	tokens   map[uuid.UUID]*models.ExpiringToken
	messages []models.Message

	getByEmailErr    error
	sessionCreateErr error
	tokenCreateErr   error
	lastListLimit    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		sessions: make(map[uuid.UUID]*models.Session),
		tokens:   make(map[uuid.UUID]*models.ExpiringToken),
	}
}

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrConflict
		}
	}
	f.s.nextUser++
	cp := *u
	cp.ID = f.s.nextUser
	cp.CreatedAt = t0
	f.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.getByEmailErr != nil {
		return nil, f.s.getByEmailErr
	}
	for _, u := range f.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f fakeUsers) SetVerified(_ context.Context, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeSessions struct{ s *fakeStore }

func (f fakeSessions) Create(_ context.Context, sess *models.Session) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.sessionCreateErr != nil {
		return f.s.sessionCreateErr
	}
	cp := *sess
	cp.CreatedAt = t0
	f.s.sessions[cp.ID] = &cp
	sess.CreatedAt = cp.CreatedAt
	return nil
}

func (f fakeSessions) FindActive(_ context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sess, ok := f.s.sessions[id]
	if !ok || !sess.ExpiresAt.After(now) {
		return nil, common.ErrNotFound
	}
	out := *sess
	return &out, nil
}

func (f fakeSessions) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.sessions, id)
	return nil
}

func (f fakeSessions) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, sess := range f.s.sessions {
		if sess.UserID == userID {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f fakeSessions) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, sess := range f.s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeTokens struct{ s *fakeStore }

func (f fakeTokens) Create(_ context.Context, tok *models.ExpiringToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.tokenCreateErr != nil {
		return f.s.tokenCreateErr
	}
	cp := *tok
	f.s.tokens[cp.ID] = &cp
	return nil
}

// Take mirrors DELETE ... RETURNING: the store mutex plays the row lock.
func (f fakeTokens) Take(_ context.Context, id uuid.UUID, kind models.TokenKind, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	tok, ok := f.s.tokens[id]
	if !ok || tok.Kind != kind || !tok.ExpiresAt.After(now) {
		return 0, common.ErrNotFound
	}
	delete(f.s.tokens, id)
	return tok.UserID, nil
}

func (f fakeTokens) DeleteByUserKind(_ context.Context, userID int64, kind models.TokenKind) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, tok := range f.s.tokens {
		if tok.UserID == userID && tok.Kind == kind {
			delete(f.s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (f fakeTokens) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, tok := range f.s.tokens {
		if !tok.ExpiresAt.After(now) {
			delete(f.s.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeMessages struct{ s *fakeStore }

func (f fakeMessages) Create(_ context.Context, m *models.Message) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextMsg++
	m.ID = f.s.nextMsg
	m.CreatedAt = t0.Add(time.Duration(m.ID) * time.Second)
	f.s.messages = append(f.s.messages, *m)
	return nil
}

func (f fakeMessages) ListByClub(_ context.Context, clubID int64, limit int) ([]models.Message, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.lastListLimit = limit
	var out []models.Message
	for _, m := range f.s.messages {
		if m.ClubID == clubID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return fakeUsers{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return fakeSessions{m.s} }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository            { return fakeTokens{m.s} }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return fakeMessages{m.s} }

// --- metadata ---

type flakyMetadata struct {
	metadata.Store
	createErr error
}

func (f *flakyMetadata) Create(ctx context.Context, userID int64, blob string) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Store.Create(ctx, userID, blob)
}

// --- mail ---

type sentMail struct {
	kind, to, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(_ context.Context, to, tokenID string) error {
	return m.record("verify", to, tokenID)
}

func (m *fakeMailer) SendReset(_ context.Context, to, tokenID string) error {
	return m.record("reset", to, tokenID)
}

func (m *fakeMailer) record(kind, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, token: token})
	return nil
}

func (m *fakeMailer) last(t *testing.T, kind string) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i]
		}
	}
	t.Fatalf("no %s mail sent", kind)
	return sentMail{}
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- environment ---

type testEnv struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *fakeStore
	meta     *flakyMetadata
	mailer   *fakeMailer
	clock    *fakeClock
	secrets  Secrets
	deps     Deps
	tokens   *TokenService
	users    *UserService
	accounts *AccountService
	chat     *ChatService
}

func testSecrets() Secrets {
	var key cryptox.Key
	for i := range key {
		key[i] = byte(i)
	}
	return Secrets{
		JWTSecret: []byte("test-jwt-secret"),
		Key:       key,
		Argon2: cryptox.Argon2Params{
			MemoryKiB:   64,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		SessionTTL:     24 * time.Hour,
		VerifyTokenTTL: 24 * time.Hour,
		ResetTokenTTL:  time.Hour,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:      db,
		mock:    mock,
		store:   newFakeStore(),
		meta:    &flakyMetadata{Store: metadata.NewMemoryStore()},
		mailer:  &fakeMailer{},
		clock:   &fakeClock{t: t0},
		secrets: testSecrets(),
	}
	env.deps = Deps{
		DB:       db,
		Repos:    &fakeRepoManager{s: env.store},
		Metadata: env.meta,
		Mailer:   env.mailer,
		Now:      env.clock.Now,
	}

	env.tokens = NewTokenService(env.deps, env.secrets)
	env.users, err = NewUserService(env.deps, env.secrets, env.tokens)
	if err != nil {
		t.Fatalf("NewUserService error: %v", err)
	}
	env.accounts = NewAccountService(env.deps, env.secrets, env.tokens)
	env.chat = NewChatService(env.deps, env.secrets)

	return env
}

func (e *testEnv) expectCommit() {
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
}

func (e *testEnv) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

func (e *testEnv) verifyMock(t *testing.T) {
	t.Helper()
	if err := e.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// register creates alice and returns the result.
func (e *testEnv) register(t *testing.T) *AuthResult {
	t.Helper()
	e.expectCommit()
	res, err := e.users.Register(context.Background(), RequestContext{UserAgent: "test-agent"}, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return res
}
