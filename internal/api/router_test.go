package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/auth"
	"fintrack/internal/database"
	"fintrack/internal/services"
)

type stubMailer struct {
	lastURL string
}

func (m *stubMailer) SendPasswordReset(toEmail, resetURL string) error {
	m.lastURL = resetURL
	return nil
}

type RouterTestSuite struct {
	suite.Suite
	server *httptest.Server
	mailer *stubMailer
}

func (s *RouterTestSuite) SetupTest() {
	db, err := database.New(":memory:")
	require.NoError(s.T(), err)
	// A second pooled connection would see its own empty :memory: database
	db.SetMaxOpenConns(1)
	require.NoError(s.T(), database.Migrate(db))

	issuer, err := auth.NewTokenIssuer("test-secret")
	require.NoError(s.T(), err)

	s.mailer = &stubMailer{}
	userService := services.NewUserService(db)
	authService := services.NewAuthService(userService, issuer, services.NewPasswordHasher(), s.mailer, "http://localhost:3000/reset-password")

	router := NewRouter(issuer, authService,
		services.NewTransactionService(db),
		services.NewSettingsService(db),
		"http://localhost:3000")
	s.server = httptest.NewServer(router)
}

func (s *RouterTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

// do sends a JSON request and decodes the JSON response body into out.
func (s *RouterTestSuite) do(method, path, token string, body, out interface{}) int {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *RouterTestSuite) register(name, email, password string) (token, userID string) {
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status := s.do(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": name, "email": email, "password": password}, &resp)
	require.Equal(s.T(), http.StatusCreated, status)
	require.NotEmpty(s.T(), resp.Token)
	return resp.Token, resp.User.ID
}

func (s *RouterTestSuite) TestRegisterAndLogin() {
	_, userID := s.register("Alice", "alice@example.com", "secret1")

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status := s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "secret1"}, &resp)
	assert.Equal(s.T(), http.StatusCreated, status)
	assert.Equal(s.T(), userID, resp.User.ID)
}

func (s *RouterTestSuite) TestRegisterConflict() {
	s.register("Alice", "alice@example.com", "secret1")

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	status := s.do(http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"name": "Mallory", "email": "alice@example.com", "password": "x"}, &resp)
	assert.Equal(s.T(), http.StatusBadRequest, status)
	assert.Equal(s.T(), "CONFLICT", resp.Error.Code)
}

func (s *RouterTestSuite) TestProtectedRoutesRequireToken() {
	for _, path := range []string{"/api/v1/transactions/", "/api/v1/settings/", "/api/v1/auth/me"} {
		status := s.do(http.MethodGet, path, "", nil, nil)
		assert.Equal(s.T(), http.StatusUnauthorized, status, "GET %s without token", path)
	}

	status := s.do(http.MethodGet, "/api/v1/auth/me", "garbage-token", nil, nil)
	assert.Equal(s.T(), http.StatusUnauthorized, status)
}

func (s *RouterTestSuite) TestTransactionLifecycle() {
	token, _ := s.register("Alice", "alice@example.com", "secret1")

	var created struct {
		Transaction struct {
			ID string `json:"id"`
		} `json:"transaction"`
	}
	status := s.do(http.MethodPost, "/api/v1/transactions/", token, map[string]interface{}{
		"type":     "expense",
		"category": "food",
		"amount":   12.5,
		"date":     "2026-08-28T12:00:00Z",
		"note":     "lunch",
	}, &created)
	require.Equal(s.T(), http.StatusOK, status)
	require.NotEmpty(s.T(), created.Transaction.ID)

	var list struct {
		Transaction []struct {
			ID       string  `json:"id"`
			Category string  `json:"category"`
			Amount   float64 `json:"amount"`
		} `json:"transaction"`
	}
	status = s.do(http.MethodGet, "/api/v1/transactions/", token, nil, &list)
	require.Equal(s.T(), http.StatusOK, status)
	require.Len(s.T(), list.Transaction, 1)
	assert.Equal(s.T(), "food", list.Transaction[0].Category)

	// A different user cannot delete it
	otherToken, _ := s.register("Bob", "bob@example.com", "secret2")
	status = s.do(http.MethodDelete, "/api/v1/transactions/"+created.Transaction.ID, otherToken, nil, nil)
	assert.Equal(s.T(), http.StatusNotFound, status)

	// The owner can
	status = s.do(http.MethodDelete, "/api/v1/transactions/"+created.Transaction.ID, token, nil, nil)
	assert.Equal(s.T(), http.StatusOK, status)
}

func (s *RouterTestSuite) TestSettingsRoundTrip() {
	token, userID := s.register("Alice", "alice@example.com", "secret1")

	var settings struct {
		UserID   string `json:"userId"`
		Currency string `json:"currency"`
	}
	status := s.do(http.MethodGet, "/api/v1/settings/", token, nil, &settings)
	require.Equal(s.T(), http.StatusOK, status)
	assert.Equal(s.T(), userID, settings.UserID)
	assert.Empty(s.T(), settings.Currency)

	status = s.do(http.MethodPost, "/api/v1/settings/", token, map[string]interface{}{
		"name":          "Alice",
		"currency":      "EUR",
		"notifications": true,
	}, &settings)
	require.Equal(s.T(), http.StatusOK, status)
	assert.Equal(s.T(), "EUR", settings.Currency)
}

func (s *RouterTestSuite) TestPasswordResetFlow() {
	s.register("Alice", "alice@example.com", "secret1")

	status := s.do(http.MethodPost, "/api/v1/auth/forgot-password", "",
		map[string]string{"email": "alice@example.com"}, nil)
	require.Equal(s.T(), http.StatusOK, status)
	require.NotEmpty(s.T(), s.mailer.lastURL)

	parts := strings.Split(s.mailer.lastURL, "/")
	secret := parts[len(parts)-1]

	status = s.do(http.MethodPut, "/api/v1/auth/reset-password", "",
		map[string]string{"token": secret, "password": "secret2"}, nil)
	require.Equal(s.T(), http.StatusOK, status)

	status = s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "secret1"}, nil)
	assert.Equal(s.T(), http.StatusBadRequest, status, "old password must stop working")

	status = s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "secret2"}, nil)
	assert.Equal(s.T(), http.StatusCreated, status)
}

func (s *RouterTestSuite) TestChangePassword() {
	token, _ := s.register("Alice", "alice@example.com", "secret1")

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	status := s.do(http.MethodPost, "/api/v1/auth/change-password", token,
		map[string]string{"currentPassword": "wrong", "newPassword": "secret2"}, &errResp)
	assert.Equal(s.T(), http.StatusBadRequest, status)
	assert.Equal(s.T(), "WRONG_PASSWORD", errResp.Error.Code)

	status = s.do(http.MethodPost, "/api/v1/auth/change-password", token,
		map[string]string{"currentPassword": "secret1", "newPassword": "secret2"}, nil)
	require.Equal(s.T(), http.StatusOK, status)

	status = s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "secret2"}, nil)
	assert.Equal(s.T(), http.StatusCreated, status)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
