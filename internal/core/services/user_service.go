package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/google/uuid"
)

type UserService struct {
	repo     ports.UserRepository
	sessions ports.SessionStore
	now      func() time.Time
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService builds the account service. sessions may be nil when
// tokens are not tracked.
func NewUserService(repo ports.UserRepository, sessions ports.SessionStore) *UserService {
	return &UserService{repo: repo, sessions: sessions, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindUser(ctx, id)
}

// CreateUser is the administrative path and accepts any role.
func (s *UserService) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	if err := validateNewUser(input); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, domain.Storage("hash password", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register is self-service sign-up; new accounts are always students.
func (s *UserService) Register(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	input.Role = domain.RoleStudent
	return s.CreateUser(ctx, input)
}

// UpdateUser applies patch. Changing the role or the active flag ends the
// user's sessions.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *user

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		if _, err := mail.ParseAddress(*patch.Email); err != nil {
			return nil, domain.Invalid("email is not valid")
		}
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, domain.Invalid(fmt.Sprintf("unknown role %q", *patch.Role))
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, domain.Invalid(fmt.Sprintf("password must have at least %d characters", minPasswordLength))
		}
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, domain.Storage("hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}

	if s.sessions != nil && (user.Role != before.Role || user.IsActive != before.IsActive) {
		if err := s.sessions.RevokeUser(ctx, user.ID); err != nil {
			log.Printf("user service: failed to revoke sessions of user %s: %v", user.ID, err)
			return nil, domain.Storage("revoke sessions", err)
		}
	}
	return user, nil
}

func validateNewUser(input domain.NewUser) error {
	switch {
	case strings.TrimSpace(input.Username) == "":
		return domain.Invalid("username is required")
	case strings.TrimSpace(input.Name) == "":
		return domain.Invalid("name is required")
	case len(input.Password) < minPasswordLength:
		return domain.Invalid(fmt.Sprintf("password must have at least %d characters", minPasswordLength))
	case !input.Role.Valid():
		return domain.Invalid(fmt.Sprintf("unknown role %q", input.Role))
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return domain.Invalid("email is not valid")
	}
	return nil
}
