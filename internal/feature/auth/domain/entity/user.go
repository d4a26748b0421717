// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents an account in the identity directory.
// A user authenticates with a password, a federated identity, or both.
type User struct {
	// ID is the unique identifier for the user (UUID).
	ID string `gorm:"primaryKey;size:36"`

	// Name is the display name of the user.
	Name string `gorm:"size:255;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash of the user's password.
	// It is nil for accounts created through federated login only.
	PasswordHash *string `gorm:"size:255" json:"-"`

	// ProviderID is the subject identifier issued by the federation provider.
	// It is nil for password-only accounts.
	ProviderID *string `gorm:"uniqueIndex;size:255" json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasProvider reports whether a federated identity is linked to the user.
func (u *User) HasProvider() bool {
	return u.ProviderID != nil && *u.ProviderID != ""
}

// HasAuthMethod reports whether the user has at least one way to authenticate.
func (u *User) HasAuthMethod() bool {
	return u.HasPassword() || u.HasProvider()
}

// UserUpdate carries a partial update for a user. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
	ProviderID   *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.PasswordHash == nil && u.ProviderID == nil
}
