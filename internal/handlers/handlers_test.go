package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Warden/internal/auth"
	dom "Warden/internal/domain"
	"Warden/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeAccountRepo struct {
	accounts []dom.Account
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{nextID: 1}
}

func (f *fakeAccountRepo) Create(ctx context.Context, username, email, passwordHash string) (dom.Account, error) {
	for _, a := range f.accounts {
		if a.Username == username || a.Email == email {
			return dom.Account{}, &pgconn.PgError{Code: "23505"}
		}
	}
	a := dom.Account{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.nextID++
	f.accounts = append(f.accounts, a)
	return a, nil
}

func (f *fakeAccountRepo) GetByUsername(ctx context.Context, username string) (dom.Account, error) {
	for _, a := range f.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return dom.Account{}, pgx.ErrNoRows
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id int64) (dom.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return dom.Account{}, pgx.ErrNoRows
}

func (f *fakeAccountRepo) List(ctx context.Context) ([]dom.Account, error) {
	out := make([]dom.Account, len(f.accounts))
	copy(out, f.accounts)
	return out, nil
}

// newTestRouter wires the real handlers and middleware over the fake repo,
// mirroring the route layout of app.Setup. No cache.
func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewAccountService(newFakeAccountRepo(), nil)
	tokens := auth.NewTokenManager("handlers-test-secret", time.Hour)

	r := gin.New()
	api := r.Group("/api")
	authHandler := NewAuthHandler(svc, tokens)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	protected := api.Group("", auth.RequireAuth(tokens))
	accountHandler := NewAccountHandler(svc)
	protected.GET("/profile", accountHandler.Profile)
	protected.GET("/users", accountHandler.List)

	return r, tokens
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAlice(t *testing.T, r *gin.Engine) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret99",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func loginAlice(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "s3cret99",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// Full walkthrough: register, login, use the token, then the bad paths.
func TestAuthFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	// Register.
	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret99",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotZero(t, created.ID)
	assertNoDigest(t, w.Body.String())

	// Login.
	w = doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "s3cret99",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var logged struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
		User      struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logged))
	assert.NotEmpty(t, logged.Token)
	assert.Equal(t, int64(3600), logged.ExpiresIn)
	assert.Equal(t, created.ID, logged.User.ID)
	assertNoDigest(t, w.Body.String())

	// Guarded profile with the token.
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, logged.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		CreatedAt string `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, created.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.NotEmpty(t, profile.CreatedAt)
	assertNoDigest(t, w.Body.String())

	// Guarded listing.
	w = doJSON(t, r, http.MethodGet, "/api/users", nil, logged.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Items []struct {
			Username string `json:"username"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "alice", listing.Items[0].Username)
	assertNoDigest(t, w.Body.String())

	// No token.
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authorization required"}`, w.Body.String())

	// Token signed with a different secret.
	foreign := auth.NewTokenManager("some-other-secret", time.Hour)
	foreignToken, err := foreign.Issue(dom.Account{ID: created.ID, Username: "alice"})
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, foreignToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authorization required"}`, w.Body.String())
}

// The digest must not appear in any response, under any key.
func assertNoDigest(t *testing.T, body string) {
	t.Helper()
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "$2a$")
	assert.NotContains(t, body, "$2b$")
}

func TestRegister_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"missing username", map[string]string{"email": "a@example.com", "password": "s3cret99"}},
		{"missing email", map[string]string{"username": "alice", "password": "s3cret99"}},
		{"missing password", map[string]string{"username": "alice", "email": "a@example.com"}},
		{"short password", map[string]string{"username": "alice", "email": "a@example.com", "password": "12345"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/register", tt.payload, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAlice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "fresh@example.com",
		"password": "s3cret99",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"username or email already taken"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "s3cret99",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"username or email already taken"}`, w.Body.String())
}

// Unknown username and wrong password produce byte-identical responses.
func TestLogin_UniformFailureBody(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAlice(t, r)

	wUnknown := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "nobody",
		"password": "s3cret99",
	}, "")
	wWrongPw := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice",
		"password": "totally-wrong",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wWrongPw.Code)
	assert.Equal(t, wUnknown.Body.Bytes(), wWrongPw.Body.Bytes())
	assert.JSONEq(t, `{"error":"invalid username or password"}`, wUnknown.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", map[string]string{"password": "s3cret99"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A valid token whose account no longer exists: the guard passes, the
// lookup 404s.
func TestProfile_AccountGone(t *testing.T) {
	r, tokens := newTestRouter(t)

	token, err := tokens.Issue(dom.Account{ID: 404, Username: "ghost", Email: "ghost@example.com"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/profile", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"account not found"}`, w.Body.String())
}

func TestUsers_RequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authorization required"}`, w.Body.String())
}

func TestUsers_ListsAllAccounts(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAlice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/register", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "s3cret99",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	token := loginAlice(t, r)
	w = doJSON(t, r, http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Items []struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 2)

	// Both accounts present, digests absent.
	names := []string{listing.Items[0].Username, listing.Items[1].Username}
	assert.Contains(t, names, "alice")
	assert.Contains(t, names, "bob")
	assert.False(t, strings.Contains(w.Body.String(), "hash"))
}
