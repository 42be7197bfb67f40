package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/contractflow/pkg/logger"
	userdomain "github.com/ghuser/contractflow/services/user/domain"
	"github.com/ghuser/contractflow/services/user/domain/events"
	"github.com/ghuser/contractflow/services/user/domain/models"
	"github.com/ghuser/contractflow/services/user/domain/repositories"
)

const minPasswordLength = 8

// UserService manages the utenti directory.
type UserService struct {
	repo repositories.UserRepository
	log  logger.Logger
	cost int
	now  func() time.Time
}

// NewUserService returns a UserService hashing passwords at bcrypt.DefaultCost.
func NewUserService(repo repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{repo: repo, log: log, cost: bcrypt.DefaultCost, now: time.Now}
}

// CreateUserInput is an admin's request to add an account.
type CreateUserInput struct {
	models.NewUserInput
	Password string
}

// Create hashes the password and stores a new account. Only admins may
// create users; actorRole is the caller's raw role.
func (s *UserService) Create(ctx context.Context, in CreateUserInput, actorID, actorRole string) (*models.User, error) {
	if r, err := models.ParseRole(actorRole); err != nil || r != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create users", userdomain.ErrForbidden)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", userdomain.ErrInvalidUser, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", userdomain.ErrInvalidUser, err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := models.NewUser(in.NewUserInput, string(hash), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", userdomain.ErrInvalidUser, err)
	}
	if err := s.repo.Create(ctx, u, events.NewUserCreated(u, actorID)); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Count returns the number of accounts, for diagnostics.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
