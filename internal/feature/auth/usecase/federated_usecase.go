package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
)

// resolveStep tries to resolve a verified identity to a user.
// It returns a nil user when it does not apply, so the next step runs.
type resolveStep func(ctx context.Context, id *entity.FederatedIdentity) (user *entity.User, isNew bool, err error)

// FederatedUsecase logs in or registers users from a federation provider's identity token.
type FederatedUsecase struct {
	users    UserRepository
	verifier IdentityVerifier
	tokens   TokenIssuer
}

// NewFederatedUsecase creates a new FederatedUsecase.
func NewFederatedUsecase(users UserRepository, verifier IdentityVerifier, tokens TokenIssuer) *FederatedUsecase {
	return &FederatedUsecase{
		users:    users,
		verifier: verifier,
		tokens:   tokens,
	}
}

// LoginOrRegister verifies providerToken and resolves it to a user in priority order:
// provider ID match, then email match (which links the provider ID), then a new account.
func (u *FederatedUsecase) LoginOrRegister(ctx context.Context, providerToken string) (*FederatedResult, error) {
	identity, err := u.verifier.Verify(ctx, providerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFederatedVerificationFailed, err)
	}
	if identity == nil || identity.Subject == "" || identity.Email == "" {
		return nil, domain.ErrFederatedVerificationFailed
	}
	identity.Email = NormalizeEmail(identity.Email)
	identity.Name = strings.TrimSpace(identity.Name)

	user, isNew, err := u.resolve(ctx, identity, u.findByProvider, u.linkByEmail, u.create)
	if errors.Is(err, ErrUserAlreadyExists) {
		// A concurrent login created the account first; resolve against it.
		user, isNew, err = u.resolve(ctx, identity, u.findByProvider, u.linkByEmail)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrDuplicateIdentity
	}

	tokens, err := u.tokens.Issue(entity.SubjectOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &FederatedResult{User: user, Tokens: tokens, IsNewUser: isNew}, nil
}

func (u *FederatedUsecase) resolve(ctx context.Context, id *entity.FederatedIdentity, steps ...resolveStep) (*entity.User, bool, error) {
	for _, step := range steps {
		user, isNew, err := step(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if user != nil {
			return user, isNew, nil
		}
	}
	return nil, false, nil
}

func (u *FederatedUsecase) findByProvider(ctx context.Context, id *entity.FederatedIdentity) (*entity.User, bool, error) {
	user, err := u.users.FindByProviderID(ctx, id.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up provider id: %w", err)
	}
	return user, false, nil
}

func (u *FederatedUsecase) linkByEmail(ctx context.Context, id *entity.FederatedIdentity) (*entity.User, bool, error) {
	user, err := u.users.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up email: %w", err)
	}

	// The email already belongs to a different federated identity; never rebind it.
	if user.HasProvider() && *user.ProviderID != id.Subject {
		return nil, false, domain.ErrDuplicateIdentity
	}

	linked, err := u.users.UpdateByID(ctx, user.ID, entity.UserUpdate{ProviderID: &id.Subject})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, false, domain.ErrDuplicateIdentity
		}
		return nil, false, fmt.Errorf("failed to link provider id: %w", err)
	}
	return linked, false, nil
}

func (u *FederatedUsecase) create(ctx context.Context, id *entity.FederatedIdentity) (*entity.User, bool, error) {
	user := &entity.User{
		Name:       id.Name,
		Email:      id.Email,
		ProviderID: &id.Subject,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return user, true, nil
}
