// Package adapters provides repository implementations for the auth feature.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// ErrNoAuthMethod is returned by Create for a user with neither a password hash nor a provider ID.
var ErrNoAuthMethod = errors.New("user must have a password or a federated identity")

// userGorm is a GORM implementation of the UserRepository interface.
// It works with any dialect opened with gorm.Config{TranslateError: true}.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts the user, assigning a new UUID when ID is empty.
// It returns usecase.ErrUserAlreadyExists when the email or provider ID is taken.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if !u.HasAuthMethod() {
		return ErrNoAuthMethod
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by email address.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID retrieves a user by ID.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByProviderID retrieves a user by federated provider subject.
func (r *userGorm) FindByProviderID(ctx context.Context, providerID string) (*entity.User, error) {
	return r.first(ctx, "provider_id = ?", providerID)
}

// UpdateByID applies the non-nil fields of update and returns the reloaded user.
// The update and the reload run in one transaction.
func (r *userGorm) UpdateByID(ctx context.Context, id string, update entity.UserUpdate) (*entity.User, error) {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		fields["password_hash"] = *update.PasswordHash
	}
	if update.ProviderID != nil {
		fields["provider_id"] = *update.ProviderID
	}

	var out entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&entity.User{}).Where("id = ?", id).Updates(fields)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return usecase.ErrUserNotFound
			}
		}
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, usecase.ErrUserNotFound
		case isUniqueViolation(err):
			return nil, usecase.ErrUserAlreadyExists
		case errors.Is(err, usecase.ErrUserNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &out, nil
}

func (r *userGorm) first(ctx context.Context, query string, arg string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation recognises unique-constraint failures from GORM's error
// translation and, as a fallback, from a raw PostgreSQL error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
