// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

// AuthUsecase defines the password-based authentication operations.
// Following Go convention, the interface is defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	Register(ctx context.Context, name, email, password string) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*entity.User, error)
}

// FederatedUsecase defines login through an external identity provider.
type FederatedUsecase interface {
	LoginOrRegister(ctx context.Context, providerToken string) (*usecase.FederatedResult, error)
}

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	auth      AuthUsecase
	federated FederatedUsecase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUsecase, federated FederatedUsecase) *AuthHandler {
	return &AuthHandler{auth: auth, federated: federated}
}

// Register handles the user registration endpoint.
//   - 400 on binding errors or a weak password (details list every violated rule)
//   - 409 when the email is already registered
//   - 201 with the user and a token pair on success
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bindJSON(c, &req, "register") {
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		var weak *domain.WeakCredentialError
		switch {
		case errors.As(err, &weak):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Registration failed",
				Message: domain.ErrWeakCredential.Error(),
				Details: weak.Violations,
			})
		case errors.Is(err, domain.ErrDuplicateIdentity):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Registration failed", Message: err.Error()})
		default:
			internalError(c)
		}
		return
	}

	slog.Info("user registered", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(res.User),
		Tokens:  dto.NewTokensResponse(res.Tokens),
	})
}

// Login handles the password login endpoint.
// Every authentication failure is answered with the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req, "login") {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Login failed", Message: "Invalid email or password"})
			return
		}
		internalError(c)
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    dto.NewUserResponse(res.User),
		Tokens:  dto.NewTokensResponse(res.Tokens),
	})
}

// Google handles login or registration with a Google ID token.
func (h *AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleReq
	if !bindJSON(c, &req, "google auth") {
		return
	}

	res, err := h.federated.LoginOrRegister(c.Request.Context(), req.Token)
	if err != nil {
		slog.Warn("google auth failed", "error", err, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, domain.ErrFederatedVerificationFailed):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Google authentication failed",
				Message: domain.ErrFederatedVerificationFailed.Error(),
			})
		case errors.Is(err, domain.ErrDuplicateIdentity):
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "Google authentication failed",
				Message: "Email is already linked to another account",
			})
		default:
			internalError(c)
		}
		return
	}

	msg := "Login successful"
	if res.IsNewUser {
		msg = "User registered with Google"
	}
	slog.Info("google auth successful", "user_id", res.User.ID, "new_user", res.IsNewUser, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.GoogleAuthResponse{
		Message:   msg,
		User:      dto.NewUserResponse(res.User),
		Tokens:    dto.NewTokensResponse(res.Tokens),
		IsNewUser: res.IsNewUser,
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if !bindJSON(c, &req, "refresh") {
		return
	}

	tokens, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		slog.Warn("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Token refresh failed", Message: "Invalid refresh token"})
			return
		}
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Message: "Token refreshed successfully",
		Tokens:  dto.NewTokensResponse(*tokens),
	})
}

// Me returns the user identified by the access token.
// Must be mounted behind jwtmw.AuthRequired.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Message: "User not authenticated"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found", Message: "User not found"})
			return
		}
		slog.Error("failed to load current user", "error", err, "user_id", userID)
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{User: dto.NewUserResponse(user)})
}

// bindJSON binds the request body and writes a 400 response on failure.
func bindJSON(c *gin.Context, req any, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation Error",
			Message: "invalid request",
			Details: validationDetails(err),
		})
		return false
	}
	return true
}

// validationDetails renders validator errors as one line per field.
// Malformed JSON yields no details.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			details = append(details, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
	}
	return details
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: "An unexpected error occurred",
	})
}
