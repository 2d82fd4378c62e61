package auth

import (
	"crypto/subtle"
	"strings"
)

// Credentials holds the administrator secrets accepted for mutating
// requests. A zero value accepts everyone.
type Credentials struct {
	Token        string
	Username     string
	PasswordHash string
}

// Enabled reports whether any secret is configured.
func (c Credentials) Enabled() bool {
	return strings.TrimSpace(c.Token) != "" || c.passwordEnabled()
}

func (c Credentials) passwordEnabled() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.PasswordHash) != ""
}

// CheckToken compares a bearer token in constant time.
func (c Credentials) CheckToken(candidate string) bool {
	token := strings.TrimSpace(c.Token)
	if token == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}

// CheckPassword verifies basic credentials against the configured bcrypt hash.
func (c Credentials) CheckPassword(username, password string) bool {
	if !c.passwordEnabled() {
		return false
	}
	want, err := canonicalAdminName(c.Username)
	if err != nil {
		return false
	}
	got, err := canonicalAdminName(username)
	if err != nil || got != want {
		return false
	}
	return hashMatches(c.PasswordHash, password)
}
