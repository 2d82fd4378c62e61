package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const maxAdminNameLength = 64

var adminNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._@-]*$`)

// PasswordPolicy bounds the admin password accepted by WithPassword.
// MaxLength guards bcrypt, which rejects inputs longer than 72 bytes.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
	Cost      int
}

// DefaultPasswordPolicy is what `gallery admin passwd` enforces.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8, MaxLength: 72, Cost: bcrypt.DefaultCost}

// Check validates one candidate password against the policy.
func (p PasswordPolicy) Check(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is required")
	}
	if p.MinLength > 0 && len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters", p.MinLength)
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		return fmt.Errorf("password must be at most %d bytes", p.MaxLength)
	}
	return nil
}

func (p PasswordPolicy) cost() int {
	if p.Cost < bcrypt.MinCost || p.Cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return p.Cost
}

// WithPassword returns a copy of c that accepts basic auth for username
// and password. The username is stored in canonical form and the password
// only as a bcrypt hash.
func (c Credentials) WithPassword(username, password string, policy PasswordPolicy) (Credentials, error) {
	name, err := canonicalAdminName(username)
	if err != nil {
		return c, err
	}
	if err := policy.Check(password); err != nil {
		return c, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), policy.cost())
	if err != nil {
		return c, fmt.Errorf("hash password: %w", err)
	}
	c.Username = name
	c.PasswordHash = string(hash)
	return c, nil
}

// canonicalAdminName lowercases and trims an admin name, then checks it
// against the characters config files and basic auth both carry safely.
func canonicalAdminName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case name == "":
		return "", errors.New("admin username is required")
	case len(name) > maxAdminNameLength:
		return "", fmt.Errorf("admin username must be at most %d characters", maxAdminNameLength)
	case !adminNamePattern.MatchString(name):
		return "", fmt.Errorf("invalid admin username %q", raw)
	}
	return name, nil
}

func hashMatches(hash, candidate string) bool {
	if strings.TrimSpace(hash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
