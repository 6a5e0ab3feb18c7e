package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewAuthService("k1", time.Hour, bcrypt.MinCost)
	tok, err := s.IssueToken(&models.User{ID: 7, Role: models.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.ParseToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != 7 || c.Role != models.RoleUser || c.Subject != "7" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParseTokenRejects(t *testing.T) {
	s := NewAuthService("k1", time.Hour, bcrypt.MinCost).(*authService)
	user := &models.User{ID: 7, Role: models.RoleUser}

	foreign, _ := NewAuthService("k2", time.Hour, bcrypt.MinCost).IssueToken(user)

	past := NewAuthService("k1", time.Hour, bcrypt.MinCost).(*authService)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := past.IssueToken(user)

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("k1"))

	for name, tok := range map[string]string{
		"other secret": foreign,
		"expired":      expired,
		"alg none":     unsigned,
		"no user":      noUser,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.ParseToken(tok); !errors.Is(err, models.ErrUnauthorized) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	s := NewAuthService("k", time.Hour, bcrypt.MinCost)
	h, err := s.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.CheckPassword(h, "secret1") || s.CheckPassword(h, "secret2") || s.CheckPassword("", "secret1") {
		t.Fatal("password check mismatch")
	}
}
