// Package credential implements the password policy: strength rules and bcrypt hashing.
package credential

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultMinLength is the minimum password length when none is configured.
	DefaultMinLength = 8
	// DefaultCost is the bcrypt cost factor when none is configured.
	DefaultCost = 10
	// maxBytes is the longest input bcrypt accepts.
	maxBytes = 72
)

// ErrInvalidCost is returned by NewPolicy for a cost outside bcrypt's range.
var ErrInvalidCost = errors.New("bcrypt cost out of range")

// Config holds the policy parameters. Zero values select the defaults.
type Config struct {
	MinLength int
	Cost      int
}

// Result is the outcome of Validate.
type Result struct {
	Valid      bool
	Violations []string
}

// Policy validates, hashes and verifies passwords.
// It is immutable after construction and safe for concurrent use.
type Policy struct {
	minLength int
	cost      int
	dummyHash []byte
}

// NewPolicy builds a Policy from cfg.
func NewPolicy(cfg Config) (*Policy, error) {
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Cost == 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, cfg.Cost)
	}

	// Hash of a random value at the same cost, compared against when there is no stored hash.
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to seed dummy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cfg.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to build dummy hash: %w", err)
	}

	return &Policy{
		minLength: cfg.MinLength,
		cost:      cfg.Cost,
		dummyHash: dummy,
	}, nil
}

// Validate checks password against every rule and reports all violations together.
func (p *Policy) Validate(password string) Result {
	var violations []string

	if len([]rune(password)) < p.minLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters long", p.minLength))
	}

	// Only ASCII letters and digits satisfy the character-class rules.
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}
	if !lower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !upper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !digit {
		violations = append(violations, "Password must contain at least one number")
	}
	if len(password) > maxBytes {
		violations = append(violations, fmt.Sprintf("Password must be at most %d bytes long", maxBytes))
	}

	return Result{Valid: len(violations) == 0, Violations: violations}
}

// Hash returns the bcrypt digest of password.
func (p *Policy) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (p *Policy) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy runs a full comparison against an internal hash and always reports false.
// Login paths without a stored hash call it so that they take as long as a real check.
func (p *Policy) VerifyDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(password))
	return false
}
