package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/taskman/internal/model"
)

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := m.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 || time.Until(expiresAt) > time.Hour {
		t.Errorf("expiresAt = %v, want within one hour from now", expiresAt)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "a@example.com")
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-1")
	}
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	m := NewTokenManager("secret", 0)
	if m.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", m.ttl, DefaultTokenTTL)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", 24*time.Hour)
	issuedAt := time.Now().Add(-25 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m.now = time.Now
	_, err = m.Validate(token)
	if !model.IsCode(err, model.ErrCodeTokenExpired) {
		t.Fatalf("expected TOKEN_EXPIRED, got %v", err)
	}
}

func TestTokenManager_InvalidTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	valid, _, err := m.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewTokenManager("other-secret", time.Hour)
	foreign, _, err := other.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parts := strings.Split(valid, ".")
	tamperedPayload := parts[0] + "." + parts[1] + "x" + "." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build none token: %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to build token without exp: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-token"},
		{"wrong secret", foreign},
		{"tampered payload", tamperedPayload},
		{"alg none", noneToken},
		{"missing exp", noExp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			if !model.IsCode(err, model.ErrCodeInvalidToken) {
				t.Errorf("expected INVALID_TOKEN, got %v", err)
			}
		})
	}
}

func TestTokenManager_EmptyToken(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	_, err := m.Validate("")
	if !model.IsCode(err, model.ErrCodeUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
}
