package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc     func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error)
	LoginFunc        func(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	CurrentUserFunc  func(ctx context.Context, userID string) (*entity.User, error)
}

func (m *mockAuthUsecase) Register(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAuthUsecase) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

// mockFederatedUsecase is a mock implementation of the FederatedUsecase interface.
type mockFederatedUsecase struct {
	LoginOrRegisterFunc func(ctx context.Context, providerToken string) (*usecase.FederatedResult, error)
}

func (m *mockFederatedUsecase) LoginOrRegister(ctx context.Context, providerToken string) (*usecase.FederatedResult, error) {
	if m.LoginOrRegisterFunc != nil {
		return m.LoginOrRegisterFunc(ctx, providerToken)
	}
	return nil, domain.ErrFederatedVerificationFailed
}

var testUser = &entity.User{
	ID:        "user-1",
	Name:      "Alice",
	Email:     "alice@example.com",
	CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
}

var testTokens = entity.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestRouter(auth AuthUsecase, federated FederatedUsecase) *gin.Engine {
	h := NewAuthHandler(auth, federated)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/google", h.Google)
	r.POST("/refresh", h.Refresh)
	r.GET("/me", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(jwtmw.ContextUserID, id)
		}
		c.Next()
	}, h.Me)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	}
	return w, got
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		registerFunc   func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error)
		expectedStatus int
		expectedError  string
		expectedDetail []any
	}{
		{
			name:        "success: user registration",
			requestBody: gin.H{"name": "Alice", "email": "alice@example.com", "password": "Password123"},
			registerFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
				return &usecase.AuthResult{User: testUser, Tokens: testTokens}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"name": "Alice", "email": "invalid-email", "password": "Password123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation Error",
			expectedDetail: []any{"Email must be a valid email address"},
		},
		{
			name:           "failure: short name",
			requestBody:    gin.H{"name": "A", "email": "alice@example.com", "password": "Password123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation Error",
			expectedDetail: []any{"Name must be at least 2 characters long"},
		},
		{
			name:           "failure: malformed JSON",
			requestBody:    "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation Error",
		},
		{
			name:        "failure: weak password",
			requestBody: gin.H{"name": "Alice", "email": "alice@example.com", "password": "short"},
			registerFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
				return nil, &domain.WeakCredentialError{Violations: []string{"too short", "no digit"}}
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Registration failed",
			expectedDetail: []any{"too short", "no digit"},
		},
		{
			name:        "failure: duplicate email",
			requestBody: gin.H{"name": "Alice", "email": "alice@example.com", "password": "Password123"},
			registerFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
				return nil, domain.ErrDuplicateIdentity
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "Registration failed",
		},
		{
			name:        "failure: infrastructure error",
			requestBody: gin.H{"name": "Alice", "email": "alice@example.com", "password": "Password123"},
			registerFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
				return nil, fmt.Errorf("failed to create user: %w", errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockUC := &mockAuthUsecase{RegisterFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
				called = true
				return tt.registerFunc(ctx, name, email, password)
			}}
			r := newTestRouter(mockUC, &mockFederatedUsecase{})

			w, got := doJSON(t, r, http.MethodPost, "/register", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.registerFunc != nil, called)
			if tt.expectedError == "" {
				assert.Equal(t, "User registered successfully", got["message"])
				assert.Equal(t, "user-1", got["user"].(map[string]any)["id"])
				assert.Equal(t, "access", got["tokens"].(map[string]any)["access_token"])
				return
			}
			assert.Equal(t, tt.expectedError, got["error"])
			assert.NotEmpty(t, got["message"])
			if tt.expectedDetail != nil {
				assert.Equal(t, tt.expectedDetail, got["details"])
			}
		})
	}
}

func TestAuthHandler_Register_InternalErrorHidesCause(t *testing.T) {
	mockUC := &mockAuthUsecase{RegisterFunc: func(ctx context.Context, name, email, password string) (*usecase.AuthResult, error) {
		return nil, errors.New("pq: password authentication failed for user admin")
	}}
	r := newTestRouter(mockUC, &mockFederatedUsecase{})

	w, _ := doJSON(t, r, http.MethodPost, "/register", gin.H{"name": "Alice", "email": "alice@example.com", "password": "Password123"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		loginErr       error
		expectedStatus int
	}{
		{"success", gin.H{"email": "alice@example.com", "password": "Password123"}, nil, http.StatusOK},
		{"missing password", gin.H{"email": "alice@example.com"}, nil, http.StatusBadRequest},
		{"invalid credentials", gin.H{"email": "alice@example.com", "password": "wrong"}, domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"infrastructure error", gin.H{"email": "alice@example.com", "password": "Password123"}, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{LoginFunc: func(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
				if tt.loginErr != nil {
					return nil, tt.loginErr
				}
				return &usecase.AuthResult{User: testUser, Tokens: testTokens}, nil
			}}
			r := newTestRouter(mockUC, &mockFederatedUsecase{})

			w, got := doJSON(t, r, http.MethodPost, "/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			switch tt.expectedStatus {
			case http.StatusOK:
				assert.Equal(t, "Login successful", got["message"])
				assert.Equal(t, "refresh", got["tokens"].(map[string]any)["refresh_token"])
			case http.StatusUnauthorized:
				assert.Equal(t, "Login failed", got["error"])
				assert.Equal(t, "Invalid email or password", got["message"])
			}
		})
	}
}

func TestAuthHandler_Google(t *testing.T) {
	tests := []struct {
		name            string
		requestBody     any
		result          *usecase.FederatedResult
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "new user",
			requestBody:     gin.H{"token": "id-token"},
			result:          &usecase.FederatedResult{User: testUser, Tokens: testTokens, IsNewUser: true},
			expectedStatus:  http.StatusOK,
			expectedMessage: "User registered with Google",
		},
		{
			name:            "returning user",
			requestBody:     gin.H{"token": "id-token"},
			result:          &usecase.FederatedResult{User: testUser, Tokens: testTokens},
			expectedStatus:  http.StatusOK,
			expectedMessage: "Login successful",
		},
		{
			name:           "missing token",
			requestBody:    gin.H{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:            "verification failed",
			requestBody:     gin.H{"token": "bad"},
			err:             fmt.Errorf("%w: expired", domain.ErrFederatedVerificationFailed),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: domain.ErrFederatedVerificationFailed.Error(),
		},
		{
			name:            "link refused",
			requestBody:     gin.H{"token": "id-token"},
			err:             domain.ErrDuplicateIdentity,
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Email is already linked to another account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fed := &mockFederatedUsecase{LoginOrRegisterFunc: func(ctx context.Context, providerToken string) (*usecase.FederatedResult, error) {
				return tt.result, tt.err
			}}
			r := newTestRouter(&mockAuthUsecase{}, fed)

			w, got := doJSON(t, r, http.MethodPost, "/google", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, got["message"])
			}
			if tt.result != nil {
				assert.Equal(t, tt.result.IsNewUser, got["is_new_user"])
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUC := &mockAuthUsecase{RefreshTokenFunc: func(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return &testTokens, nil
		}}
		r := newTestRouter(mockUC, &mockFederatedUsecase{})

		w, got := doJSON(t, r, http.MethodPost, "/refresh", gin.H{"refresh_token": "old-refresh"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Token refreshed successfully", got["message"])
		assert.Equal(t, "access", got["tokens"].(map[string]any)["access_token"])
	})

	t.Run("invalid token", func(t *testing.T) {
		r := newTestRouter(&mockAuthUsecase{}, &mockFederatedUsecase{})

		w, got := doJSON(t, r, http.MethodPost, "/refresh", gin.H{"refresh_token": "garbage"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token refresh failed", got["error"])
	})

	t.Run("missing token", func(t *testing.T) {
		r := newTestRouter(&mockAuthUsecase{}, &mockFederatedUsecase{})

		w, _ := doJSON(t, r, http.MethodPost, "/refresh", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	mockUC := &mockAuthUsecase{CurrentUserFunc: func(ctx context.Context, userID string) (*entity.User, error) {
		switch userID {
		case "user-1":
			return testUser, nil
		case "broken":
			return nil, errors.New("db down")
		}
		return nil, domain.ErrNotFound
	}}
	r := newTestRouter(mockUC, &mockFederatedUsecase{})

	tests := []struct {
		name           string
		userID         string
		expectedStatus int
	}{
		{"authenticated", "user-1", http.StatusOK},
		{"no user in context", "", http.StatusUnauthorized},
		{"deleted user", "gone", http.StatusNotFound},
		{"lookup failure", "broken", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.userID != "" {
				req.Header.Set("X-Test-User", tt.userID)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got map[string]map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "alice@example.com", got["user"]["email"])
				assert.NotContains(t, got["user"], "password_hash")
			}
		})
	}
}
