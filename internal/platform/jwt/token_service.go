// Package jwtmw issues and verifies the signed access/refresh token pair and
// provides the bearer-token middleware for gin.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth_backend/internal/feature/auth/domain/entity"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is the single failure reported for any token that does not verify,
	// whether it is expired, tampered with, malformed or of the wrong type.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidConfig is returned by NewTokenService for unusable settings.
	ErrInvalidConfig = errors.New("invalid token configuration")
)

// Config holds the signing secrets and lifetimes of both token types.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Issuer is written to and required in the iss claim when not empty.
	Issuer string
}

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type signer struct {
	secret    []byte
	ttl       time.Duration
	tokenType string
}

// TokenService signs and verifies tokens with two independent secrets.
// It is immutable after construction and safe for concurrent use.
type TokenService struct {
	access  signer
	refresh signer
	issuer  string
	now     func() time.Time
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg Config) (*TokenService, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, fmt.Errorf("%w: both secrets are required", ErrInvalidConfig)
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrInvalidConfig)
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, fmt.Errorf("%w: lifetimes must be positive", ErrInvalidConfig)
	}

	return &TokenService{
		access:  signer{secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL, tokenType: TokenTypeAccess},
		refresh: signer{secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL, tokenType: TokenTypeRefresh},
		issuer:  cfg.Issuer,
		now:     time.Now,
	}, nil
}

// Issue signs an access and a refresh token for subject.
// Either both tokens are returned or an error is.
func (s *TokenService) Issue(subject entity.Subject) (entity.TokenPair, error) {
	now := s.now()

	access, err := s.sign(s.access, subject, now)
	if err != nil {
		return entity.TokenPair{}, err
	}
	refresh, err := s.sign(s.refresh, subject, now)
	if err != nil {
		return entity.TokenPair{}, err
	}

	return entity.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess returns the subject of a valid access token.
func (s *TokenService) VerifyAccess(token string) (entity.Subject, error) {
	return s.verify(s.access, token)
}

// VerifyRefresh returns the subject of a valid refresh token.
func (s *TokenService) VerifyRefresh(token string) (entity.Subject, error) {
	return s.verify(s.refresh, token)
}

func (s *TokenService) sign(sg signer, subject entity.Subject, now time.Time) (string, error) {
	claims := Claims{
		UserID:    subject.UserID,
		Email:     subject.Email,
		TokenType: sg.tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID,
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sg.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", sg.tokenType, err)
	}
	return signed, nil
}

func (s *TokenService) verify(sg signer, tokenStr string) (entity.Subject, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return sg.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return entity.Subject{}, ErrInvalidToken
	}
	if claims.TokenType != sg.tokenType || claims.UserID == "" {
		return entity.Subject{}, ErrInvalidToken
	}

	return entity.Subject{UserID: claims.UserID, Email: claims.Email}, nil
}
