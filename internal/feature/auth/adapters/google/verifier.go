// Package google verifies Google ID tokens for federated login.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"auth_backend/internal/feature/auth/domain/entity"
)

var (
	// ErrAudienceNotConfigured is returned when no OAuth client ID is configured.
	ErrAudienceNotConfigured = errors.New("google client id is not configured")

	// ErrInvalidPayload is returned when a verified token lacks a required claim.
	ErrInvalidPayload = errors.New("invalid Google token payload")

	// ErrEmailNotVerified is returned when Google reports the email as unverified.
	ErrEmailNotVerified = errors.New("google email is not verified")
)

// validateFunc matches (*idtoken.Validator).Validate.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks ID token signatures against Google's published keys and
// extracts the identity claims.
type Verifier struct {
	audience string
	validate validateFunc
}

// NewVerifier builds a Verifier that accepts tokens issued for clientID.
// client is used to fetch Google's signing certificates.
func NewVerifier(ctx context.Context, clientID string, client *http.Client) (*Verifier, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &Verifier{audience: clientID, validate: v.Validate}, nil
}

// Verify validates token and returns the identity it asserts.
func (v *Verifier) Verify(ctx context.Context, token string) (*entity.FederatedIdentity, error) {
	if v.audience == "" {
		return nil, ErrAudienceNotConfigured
	}
	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("failed to verify Google token: %w", err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*entity.FederatedIdentity, error) {
	if p == nil {
		return nil, ErrInvalidPayload
	}
	email, _ := p.Claims["email"].(string)
	name, _ := p.Claims["name"].(string)
	if p.Subject == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidPayload
	}
	if !emailVerified(p.Claims["email_verified"]) {
		return nil, ErrEmailNotVerified
	}

	return &entity.FederatedIdentity{
		Subject: p.Subject,
		Email:   email,
		Name:    name,
	}, nil
}

// emailVerified accepts the claim as a JSON bool or as the string form some
// Google endpoints return. An absent claim counts as unverified.
func emailVerified(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}
