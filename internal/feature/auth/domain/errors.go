// Package domain defines domain-level errors for the auth feature.
package domain

import (
	"errors"
	"strings"
)

// Domain errors for authentication operations.
// Upper layers branch on these with errors.Is / errors.As to pick a status and message.
var (
	// ErrDuplicateIdentity indicates that the email is already bound to another user.
	ErrDuplicateIdentity = errors.New("email already registered")

	// ErrWeakCredential indicates that a password was rejected by the credential policy.
	// The concrete error is a *WeakCredentialError carrying every violated rule.
	ErrWeakCredential = errors.New("password does not meet requirements")

	// ErrInvalidCredentials is returned by login and refresh for every authentication failure.
	// It deliberately does not say whether the account exists or which method it uses.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFederatedVerificationFailed indicates that a provider identity token was rejected.
	ErrFederatedVerificationFailed = errors.New("failed to verify federated identity token")

	// ErrNotFound indicates that a previously issued subject no longer resolves to a user.
	ErrNotFound = errors.New("user not found")
)

// WeakCredentialError lists every credential policy rule a password violated.
type WeakCredentialError struct {
	Violations []string
}

// Error joins the violations into one message.
func (e *WeakCredentialError) Error() string {
	if len(e.Violations) == 0 {
		return ErrWeakCredential.Error()
	}
	return strings.Join(e.Violations, ", ")
}

// Is makes errors.Is(err, ErrWeakCredential) match.
func (e *WeakCredentialError) Is(target error) bool {
	return target == ErrWeakCredential
}
