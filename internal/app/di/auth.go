// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/adapters/google"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	authusecase "auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/credential"
	infrahttp "auth_backend/internal/platform/http"
	jwtmw "auth_backend/internal/platform/jwt"
)

// Auth bundles the wired auth feature.
type Auth struct {
	Handler *authhandler.AuthHandler
	Tokens  *jwtmw.TokenService
}

// NewGoogleVerifier creates the Google ID token verifier.
func NewGoogleVerifier(ctx context.Context, cfg config.Google) (*google.Verifier, error) {
	return google.NewVerifier(ctx, cfg.ClientID, infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewAuth wires the user directory, credential policy, token service and usecases into a handler.
func NewAuth(cfg config.Config, db *gorm.DB, verifier authusecase.IdentityVerifier) (*Auth, error) {
	policy, err := credential.NewPolicy(credential.Config{
		MinLength: cfg.Password.MinLength,
		Cost:      cfg.Password.BcryptCost,
	})
	if err != nil {
		return nil, fmt.Errorf("credential policy: %w", err)
	}

	tokens, err := jwtmw.NewTokenService(jwtmw.Config{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.ExpiresIn.Std(),
		RefreshTTL:    cfg.JWT.RefreshExpiresIn.Std(),
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	users := authadapters.NewUserGorm(db)
	authUC := authusecase.NewAuthUsecase(users, policy, tokens)
	federatedUC := authusecase.NewFederatedUsecase(users, verifier, tokens)

	return &Auth{
		Handler: authhandler.NewAuthHandler(authUC, federatedUC),
		Tokens:  tokens,
	}, nil
}
