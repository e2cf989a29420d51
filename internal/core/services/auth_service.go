package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// AuthService verifies passwords and issues RS256 access tokens. Each token
// carries a session id (jti) registered in the session store so logout can
// revoke it early.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	privateKey *rsa.PrivateKey
	tokenTTL   time.Duration
	now        func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	privateKey *rsa.PrivateKey,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		privateKey: privateKey,
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// keep timing close to a real comparison
			_ = CheckPassword(dummyHash, password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	sessionID := uuid.NewString()
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  sessionID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	if err != nil {
		return nil, "", err
	}

	if s.sessions != nil {
		if err := s.sessions.Create(ctx, sessionID, user.ID, s.tokenTTL); err != nil {
			log.Printf("auth service: failed to store session for user %s: %v", user.ID, err)
			return nil, "", err
		}
	}

	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}
