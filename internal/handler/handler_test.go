package handler_test

// Shared test harness for the auth and admin endpoint tests.  The real
// router wiring and error translator are used end to end; only the two
// stores are replaced by in-memory fakes.

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/httperr"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/router"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

var testCfg = config.Config{
	Env:            "test",
	Port:           "0",
	AccessSecret:   "test-access-secret",
	RefreshSecret:  "test-refresh-secret",
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     10,
}

// fakeUserStore is an in-memory UserStore with the same error contract as
// repository.UserRepo.
type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint64]model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	s.seq++
	now := time.Now().UTC()
	u := model.User{
		ID:           s.seq,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id uint64, role string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// fakeTokenStore is an in-memory refresh token ledger.
type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[string]uint64 // token hash -> user id
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]uint64)}
}

func (s *fakeTokenStore) Store(_ context.Context, userID uint64, tokenHash string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tokenHash] = userID
	return nil
}

func (s *fakeTokenStore) Exists(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[tokenHash]
	return ok, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, tokenHash)
	return nil
}

func (s *fakeTokenStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, uid := range s.rows {
		if uid == userID {
			delete(s.rows, h)
		}
	}
	return nil
}

func (s *fakeTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type testServer struct {
	e      *echo.Echo
	users  *fakeUserStore
	tokens *fakeTokenStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()

	auth := handler.NewAuthHandler(testCfg, users, tokens)
	auth.Publish = nil // no broker in tests
	admin := handler.NewAdminHandler(users, tokens)
	admin.Publish = nil

	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	router.RegisterRoutes(e)
	deps := router.Deps{
		Cfg:       testCfg,
		RateLimit: config.RateLimitConfig{Enabled: false},
		Redis:     nil,
		Auth:      auth,
		Admin:     admin,
	}
	deps.RegisterAuth(e)

	return &testServer{e: e, users: users, tokens: tokens}
}

// do performs a request against the in-process server.
func (ts *testServer) do(t *testing.T, method, path string, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(value string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: value})
	}
}

// register creates an account through the API and returns its id.
func (ts *testServer) register(t *testing.T, email, password string) uint64 {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register",
		`{"email":"`+email+`","password":"`+password+`","name":"Test User"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		UserID uint64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.UserID
}

// login returns the access token and the refresh cookie value.
func (ts *testServer) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, refreshCookieValue(t, rec)
}

func refreshCookieValue(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c.Value
		}
	}
	return ""
}

// promote flips a user's role directly in the store, bypassing the API,
// to bootstrap the first admin.
func (ts *testServer) promote(t *testing.T, id uint64) {
	t.Helper()
	_, err := ts.users.UpdateRole(context.Background(), id, model.RoleAdmin)
	require.NoError(t, err)
}

// adminToken registers and promotes an admin, then returns a bearer token
// for it.
func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	id := ts.register(t, "admin@example.com", "adminpass")
	ts.promote(t, id)
	tok, err := utils.NewAccessToken(testCfg.AccessSecret, id, model.RoleAdmin, testCfg.AccessTTLMin)
	require.NoError(t, err)
	return tok.Token
}
