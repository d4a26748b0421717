package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/platform/credential"
	jwtmw "auth_backend/internal/platform/jwt"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// Unset functions fall back to "not found" for lookups and success for writes.
type mockUserRepository struct {
	CreateFunc           func(ctx context.Context, user *entity.User) error
	FindByEmailFunc      func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc         func(ctx context.Context, id string) (*entity.User, error)
	FindByProviderIDFunc func(ctx context.Context, providerID string) (*entity.User, error)
	UpdateByIDFunc       func(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByProviderID(ctx context.Context, providerID string) (*entity.User, error) {
	if m.FindByProviderIDFunc != nil {
		return m.FindByProviderIDFunc(ctx, providerID)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) UpdateByID(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error) {
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, update)
	}
	return nil, ErrUserNotFound
}

// mockTokenIssuer is a mock implementation of the TokenIssuer interface.
type mockTokenIssuer struct {
	IssueFunc         func(subject entity.Subject) (entity.TokenPair, error)
	VerifyRefreshFunc func(token string) (entity.Subject, error)
}

func (m *mockTokenIssuer) Issue(subject entity.Subject) (entity.TokenPair, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(subject)
	}
	return entity.TokenPair{AccessToken: "access-" + subject.UserID, RefreshToken: "refresh-" + subject.UserID}, nil
}

func (m *mockTokenIssuer) VerifyRefresh(token string) (entity.Subject, error) {
	if m.VerifyRefreshFunc != nil {
		return m.VerifyRefreshFunc(token)
	}
	return entity.Subject{}, jwtmw.ErrInvalidToken
}

// mockVerifier is a mock implementation of the IdentityVerifier interface.
type mockVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (*entity.FederatedIdentity, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*entity.FederatedIdentity, error) {
	return m.VerifyFunc(ctx, token)
}

// staticVerifier maps provider tokens to fixed identities.
type staticVerifier map[string]entity.FederatedIdentity

func (s staticVerifier) Verify(_ context.Context, token string) (*entity.FederatedIdentity, error) {
	id, ok := s[token]
	if !ok {
		return nil, jwtmw.ErrInvalidToken
	}
	return &id, nil
}

// memoryDirectory is an in-memory UserRepository that enforces the same
// uniqueness rules as the database adapter.
type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]entity.User{}}
}

func (d *memoryDirectory) Create(_ context.Context, user *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if existing.Email == user.Email {
			return ErrUserAlreadyExists
		}
		if user.HasProvider() && existing.HasProvider() && *existing.ProviderID == *user.ProviderID {
			return ErrUserAlreadyExists
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	d.users[user.ID] = *user
	return nil
}

func (d *memoryDirectory) find(match func(entity.User) bool) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range d.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *memoryDirectory) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return d.find(func(u entity.User) bool { return u.Email == email })
}

func (d *memoryDirectory) FindByID(_ context.Context, id string) (*entity.User, error) {
	return d.find(func(u entity.User) bool { return u.ID == id })
}

func (d *memoryDirectory) FindByProviderID(_ context.Context, providerID string) (*entity.User, error) {
	return d.find(func(u entity.User) bool { return u.HasProvider() && *u.ProviderID == providerID })
}

func (d *memoryDirectory) UpdateByID(_ context.Context, id string, update entity.UserUpdate) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.PasswordHash != nil {
		u.PasswordHash = update.PasswordHash
	}
	if update.ProviderID != nil {
		u.ProviderID = update.ProviderID
	}
	u.UpdatedAt = time.Now()
	d.users[id] = u
	return &u, nil
}

func (d *memoryDirectory) delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, id)
}

func (d *memoryDirectory) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

func newTestPolicy(t *testing.T) *credential.Policy {
	t.Helper()
	p, err := credential.NewPolicy(credential.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	return p
}

func newTestTokens(t *testing.T) *jwtmw.TokenService {
	t.Helper()
	svc, err := jwtmw.NewTokenService(jwtmw.Config{
		AccessSecret:  "usecase-access-secret",
		RefreshSecret: "usecase-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}
