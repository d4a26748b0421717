package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
)

// AuthUsecase implements password registration, login and token refresh.
type AuthUsecase struct {
	users  UserRepository
	policy CredentialPolicy
	tokens TokenIssuer
}

// NewAuthUsecase creates a new AuthUsecase.
func NewAuthUsecase(users UserRepository, policy CredentialPolicy, tokens TokenIssuer) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		policy: policy,
		tokens: tokens,
	}
}

// NormalizeEmail trims and lower-cases an email so that lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account and issues its first token pair.
// Both the duplicate check and the password policy run before anything is written.
func (u *AuthUsecase) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateIdentity
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if res := u.policy.Validate(password); !res.Valid {
		return nil, &domain.WeakCredentialError{Violations: res.Violations}
	}

	hashed, err := u.policy.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: &hashed,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// Another registration won the race between the pre-check and the insert.
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := u.tokens.Issue(entity.SubjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login authenticates a user by email and password.
// Unknown email, federation-only account and wrong password all return
// domain.ErrInvalidCredentials, and all of them run one bcrypt comparison.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if err != nil || !user.HasPassword() {
		u.policy.VerifyDummy(password)
		return nil, domain.ErrInvalidCredentials
	}
	if !u.policy.Verify(password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := u.tokens.Issue(entity.SubjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// RefreshToken exchanges a valid refresh token for a brand-new token pair.
// The presented refresh token is not revoked and stays valid until it expires.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	subject, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := u.users.FindByID(ctx, subject.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tokens, err := u.tokens.Issue(entity.SubjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &tokens, nil
}

// CurrentUser returns the user behind an authenticated access token.
func (u *AuthUsecase) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
