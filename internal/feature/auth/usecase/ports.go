package usecase

import (
	"context"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/credential"
)

// UserRepository abstracts the identity directory.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and fills in its ID and timestamps.
	// It returns ErrUserAlreadyExists if the email or provider ID is already taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByProviderID returns ErrUserNotFound when no user is linked to the provider subject.
	FindByProviderID(ctx context.Context, providerID string) (*entity.User, error)

	// UpdateByID applies a partial update and returns the updated user.
	UpdateByID(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error)
}

// CredentialPolicy validates, hashes and verifies passwords.
type CredentialPolicy interface {
	Validate(password string) credential.Result
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	VerifyDummy(password string) bool
}

// TokenIssuer issues and verifies token pairs.
type TokenIssuer interface {
	Issue(subject entity.Subject) (entity.TokenPair, error)
	VerifyRefresh(token string) (entity.Subject, error)
}

// IdentityVerifier verifies an identity token issued by the federation provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*entity.FederatedIdentity, error)
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User   *entity.User
	Tokens entity.TokenPair
}

// FederatedResult is returned by a successful federated login.
type FederatedResult struct {
	User      *entity.User
	Tokens    entity.TokenPair
	IsNewUser bool
}
