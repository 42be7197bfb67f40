package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/services/user/domain/events"
	"github.com/ghuser/contractflow/services/user/domain/models"
)

// UserRepository is the persistence interface for the utenti directory.
type UserRepository interface {
	// Create inserts u and publishes evt in the same transaction. Returns
	// ErrUserAlreadyExists when the email is taken.
	Create(ctx context.Context, u *models.User, evt events.UserCreatedEvent) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	Count(ctx context.Context) (int64, error)
}
