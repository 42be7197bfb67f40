package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/services/user/domain/models"
)

// TopicUserCreated is the Watermill topic published when a user is created.
const TopicUserCreated = "user.created"

// UserCreatedEvent is published after a new user is persisted. It never
// carries the password hash.
type UserCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	CreatedBy  string    `json:"created_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserCreated builds the event for u created by actorID.
func NewUserCreated(u *models.User, actorID string) UserCreatedEvent {
	return UserCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       string(u.Role),
		CreatedBy:  actorID,
		OccurredAt: u.CreatedAt,
	}
}
