package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestPrincipalNotSignedIn(t *testing.T) {
	s := NewLocalTokenSource("secret", time.Hour)

	if _, err := s.Principal(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("want ErrNotSignedIn, got %v", err)
	}
	if _, err := s.FreshToken(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("FreshToken without principal: want ErrNotSignedIn, got %v", err)
	}
}

func TestSignInSignOut(t *testing.T) {
	s := NewLocalTokenSource("secret", time.Hour)
	u := &models.User{ID: 7, Email: "hiker@example.com"}

	s.SignIn(u)
	got, err := s.Principal()
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 7 {
		t.Errorf("principal = %+v", got)
	}

	s.SignOut()
	if _, err := s.Principal(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("after sign-out: want ErrNotSignedIn, got %v", err)
	}
}

func TestFreshTokenClaims(t *testing.T) {
	s := NewLocalTokenSource("secret", time.Hour)
	s.SignIn(&models.User{ID: 7, Email: "hiker@example.com"})

	signed, err := s.FreshToken(context.Background())
	if err != nil {
		t.Fatalf("FreshToken: %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 7 {
		t.Errorf("user_id = %v", claims["user_id"])
	}
	if claims["email"] != "hiker@example.com" {
		t.Errorf("email = %v", claims["email"])
	}
	exp := int64(claims["exp"].(float64))
	if exp <= time.Now().Unix() {
		t.Errorf("exp %d not in the future", exp)
	}
}

func TestFreshTokenMintsEveryCall(t *testing.T) {
	s := NewLocalTokenSource("secret", time.Hour)
	s.SignIn(&models.User{ID: 7, Email: "hiker@example.com"})

	ctx := context.Background()
	first, err := s.FreshToken(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.FreshToken(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first == "" || second == "" {
		t.Fatal("empty token")
	}
	// both must verify; equality is allowed when minted in the same second
	for _, tok := range []string{first, second} {
		parsed, err := jwt.Parse(tok, func(token *jwt.Token) (any, error) { return []byte("secret"), nil })
		if err != nil || !parsed.Valid {
			t.Errorf("token does not verify: %v", err)
		}
	}
}
