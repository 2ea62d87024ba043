package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestService()

	tok, err := s.GenerateAccessToken("ind_123", "a@example.com", RoleIndividual)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "ind_123" || claims.Email != "a@example.com" || claims.Role != RoleIndividual {
		t.Fatalf("claims not carried through: %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access token, got %q", claims.TokenType)
	}
	if s.IsRefreshToken(claims) {
		t.Fatalf("access token misidentified as refresh")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := newTestService()

	tok, err := s.GenerateRefreshToken("comp_9", RoleCompany)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !s.IsRefreshToken(claims) {
		t.Fatalf("refresh token not identified")
	}
	if claims.Email != "" {
		t.Fatalf("refresh token must not carry an email")
	}
}

func TestGenerateRejectsUnknownRole(t *testing.T) {
	s := newTestService()
	if _, err := s.GenerateAccessToken("x", "x@example.com", "admin"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	s := newTestService()
	other := NewHMACService("other-access", "other-refresh", time.Minute, time.Minute)

	tok, err := other.GenerateAccessToken("ind_1", "a@example.com", RoleIndividual)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	s := newTestService()
	past := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return past }

	tok, err := s.GenerateAccessToken("ind_1", "a@example.com", RoleIndividual)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	s.now = time.Now
	if _, err := s.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	s := newTestService()
	if _, err := s.ValidateToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
