// Package gormrepo stores the utenti directory with gorm over the shared
// pgx connection pool.
package gormrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/logger"
	userdomain "github.com/ghuser/contractflow/services/user/domain"
	domainevents "github.com/ghuser/contractflow/services/user/domain/events"
	"github.com/ghuser/contractflow/services/user/domain/models"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open returns a gorm handle over the pool's *sql.DB. Queries are logged
// through log at warn level and above.
func Open(db *database.Database, log logger.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB()}), &gorm.Config{
		Logger: gormlogger.NewSlogLogger(log.ToSlog().With("component", "gorm"), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// userRow maps the utenti table.
type userRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome             string    `gorm:"not null"`
	Email            string    `gorm:"not null"`
	PasswordHash     string    `gorm:"not null"`
	Ruolo            string    `gorm:"not null"`
	Stato            string    `gorm:"not null"`
	PianoCompensi    string    `gorm:"not null"`
	GestoriAssegnati []string  `gorm:"type:jsonb;serializer:json;not null"`
	MasterID         string    `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (userRow) TableName() string { return "utenti" }

// UserRepository implements repositories.UserRepository.
type UserRepository struct {
	db  *gorm.DB
	bus *events.EventBus
}

// NewUserRepository returns a UserRepository. A nil bus disables event publishing.
func NewUserRepository(db *gorm.DB, bus *events.EventBus) *UserRepository {
	return &UserRepository{db: db, bus: bus}
}

// Create inserts u and publishes evt through the outbox in the same transaction.
func (r *UserRepository) Create(ctx context.Context, u *models.User, evt domainevents.UserCreatedEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toRow(u)).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", userdomain.ErrUserAlreadyExists, u.Email)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if r.bus == nil {
			return nil
		}
		sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
		if !ok {
			return fmt.Errorf("publish user created: transaction is %T, not *sql.Tx", tx.Statement.ConnPool)
		}
		p, err := r.bus.NewTxPublisher(sqlTx)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		msg, err := events.NewMessage(evt.EventID.String(), evt)
		if err != nil {
			return err
		}
		if err := p.Publish(domainevents.TopicUserCreated, msg); err != nil {
			return fmt.Errorf("publish %s: %w", domainevents.TopicUserCreated, err)
		}
		return nil
	})
}

// GetByID returns ErrUserNotFound when no row matches.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return fromRow(row), nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func toRow(u *models.User) *userRow {
	providers := u.AssignedProviders
	if providers == nil {
		providers = []string{}
	}
	return &userRow{
		ID:               u.ID,
		Nome:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Ruolo:            string(u.Role),
		Stato:            string(u.Status),
		PianoCompensi:    u.CompensationPlan,
		GestoriAssegnati: providers,
		MasterID:         u.MasterID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func fromRow(row userRow) *models.User {
	return &models.User{
		ID:                row.ID,
		Name:              row.Nome,
		Email:             row.Email,
		PasswordHash:      row.PasswordHash,
		Role:              models.Role(row.Ruolo),
		Status:            models.Status(row.Stato),
		CompensationPlan:  row.PianoCompensi,
		AssignedProviders: row.GestoriAssegnati,
		MasterID:          row.MasterID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
