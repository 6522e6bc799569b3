package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJWTRoundtrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "acme", "amira@acme.io", "agent")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("token already expired")
	}

	user, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if user.UserID != "user-1" {
		t.Errorf("UserID = %q", user.UserID)
	}
	if user.TenantID != "acme" {
		t.Errorf("TenantID = %q", user.TenantID)
	}
	if user.Email != "amira@acme.io" {
		t.Errorf("Email = %q", user.Email)
	}
	if user.Role != "agent" {
		t.Errorf("Role = %q", user.Role)
	}
}

func TestJWTCarriesRoleNotPermissions(t *testing.T) {
	// The token must name the role only; permission lists are resolved
	// from the database per request and never travel in the token.
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, _, err := svc.GenerateAccessToken("user-1", "acme", "amira@acme.io", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}

	if claims["iss"] != "omnicrm" {
		t.Errorf("issuer = %v", claims["iss"])
	}
	if claims["role"] != "admin" {
		t.Errorf("role = %v", claims["role"])
	}
	if _, ok := claims["permissions"]; ok {
		t.Error("token must not carry a permissions claim")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	signer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := signer.GenerateAccessToken("user-1", "acme", "a@b.io", "agent")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
