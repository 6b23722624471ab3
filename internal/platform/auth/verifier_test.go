package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("verifier-test-secret")

func signTestToken(t *testing.T, secret []byte, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func staffClaims(role, doctorID string, ttl time.Duration) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role:     role,
		DoctorID: doctorID,
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims(RoleDoctor, "doc-7", time.Hour))

	claims, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("role = %q, want %q", claims.Role, RoleDoctor)
	}
	if claims.DoctorID != "doc-7" {
		t.Errorf("doctor_id = %q, want doc-7", claims.DoctorID)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, []byte("some-other-secret"), staffClaims(RoleAdmin, "", time.Hour))

	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims(RoleFrontDesk, "", -time.Minute))

	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyRequiresExpiration(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
		Role:             RoleAdmin,
	}
	tok := signTestToken(t, testSecret, claims)

	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for token without exp claim")
	}
}

func TestVerifyRejectsMissingRole(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims("", "", time.Hour))

	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for token without role claim")
	}
}

func TestVerifyRejectsDoctorWithoutDoctorID(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims(RoleDoctor, "", time.Hour))

	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for doctor token without doctor_id")
	}
}

func TestVerifyChecksIssuerAndAudience(t *testing.T) {
	v := NewVerifier(VerifierConfig{
		Secret:   testSecret,
		Issuer:   "clinicdesk",
		Audience: "clinic-staff",
	})

	good := staffClaims(RoleAdmin, "", time.Hour)
	good.Issuer = "clinicdesk"
	good.Audience = jwt.ClaimStrings{"clinic-staff"}
	if _, err := v.Verify(signTestToken(t, testSecret, good)); err != nil {
		t.Fatalf("Verify with matching issuer/audience: %v", err)
	}

	bad := staffClaims(RoleAdmin, "", time.Hour)
	bad.Issuer = "someone-else"
	bad.Audience = jwt.ClaimStrings{"clinic-staff"}
	if _, err := v.Verify(signTestToken(t, testSecret, bad)); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	if _, err := v.Verify(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
