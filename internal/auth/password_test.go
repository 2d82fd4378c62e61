package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var fastPolicy = PasswordPolicy{MinLength: 8, MaxLength: 72, Cost: bcrypt.MinCost}

func TestWithPasswordStoresCanonicalNameAndHash(t *testing.T) {
	base := Credentials{Token: "keep-me"}
	creds, err := base.WithPassword("  Admin.User ", "password-123", fastPolicy)
	if err != nil {
		t.Fatalf("with password: %v", err)
	}
	if creds.Username != "admin.user" {
		t.Fatalf("expected canonical name, got %q", creds.Username)
	}
	if creds.Token != "keep-me" {
		t.Fatalf("expected token to carry over, got %q", creds.Token)
	}
	if creds.PasswordHash == "" || creds.PasswordHash == "password-123" {
		t.Fatalf("expected a bcrypt hash, got %q", creds.PasswordHash)
	}
	if base.PasswordHash != "" {
		t.Fatal("receiver must not be modified")
	}
	if !creds.CheckPassword("ADMIN.USER", "password-123") {
		t.Fatal("expected stored password to verify")
	}
}

func TestWithPasswordRejects(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty name", username: "", password: "password-123"},
		{name: "name with space", username: "bad name", password: "password-123"},
		{name: "name too long", username: strings.Repeat("a", maxAdminNameLength+1), password: "password-123"},
		{name: "short password", username: "admin", password: "short"},
		{name: "blank password", username: "admin", password: "          "},
		{name: "password past bcrypt limit", username: "admin", password: strings.Repeat("p", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := Credentials{}.WithPassword(tt.username, tt.password, fastPolicy)
			if err == nil {
				t.Fatal("expected error")
			}
			if creds.Enabled() {
				t.Fatal("rejected input must not enable credentials")
			}
		})
	}
}

func TestPasswordPolicyCost(t *testing.T) {
	if got := (PasswordPolicy{}).cost(); got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := fastPolicy.cost(); got != bcrypt.MinCost {
		t.Fatalf("expected min cost, got %d", got)
	}
	if DefaultPasswordPolicy.Check("12345678") != nil {
		t.Fatal("expected eight characters to satisfy the default policy")
	}
}

func TestHashMatchesEmptyHash(t *testing.T) {
	if hashMatches("", "anything") {
		t.Fatal("empty hash must never match")
	}
}
