package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNotSignedIn is returned when no principal is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// TokenSource is the identity-provider contract consumed by the sync engine.
// FreshToken must mint or refresh on every call; a cached token could be
// expired by the time the sync request reaches the wire.
type TokenSource interface {
	Principal() (*models.User, error)
	FreshToken(ctx context.Context) (string, error)
}

// LocalTokenSource signs short-lived HS256 tokens for the signed-in user.
type LocalTokenSource struct {
	mu     sync.RWMutex
	user   *models.User
	secret []byte
	ttl    time.Duration
}

var _ TokenSource = (*LocalTokenSource)(nil)

func NewLocalTokenSource(secret string, ttl time.Duration) *LocalTokenSource {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocalTokenSource{secret: []byte(secret), ttl: ttl}
}

// SignIn installs u as the current principal.
func (s *LocalTokenSource) SignIn(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// SignOut clears the current principal.
func (s *LocalTokenSource) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *LocalTokenSource) Principal() (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, ErrNotSignedIn
	}
	return s.user, nil
}

func (s *LocalTokenSource) FreshToken(ctx context.Context) (string, error) {
	u, err := s.Principal()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"exp":     time.Now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
