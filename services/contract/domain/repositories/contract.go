package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// ListQuery narrows a list at the store before in-memory filtering.
type ListQuery struct {
	Status    *models.Status
	CreatedBy string
}

// Tombstone is the audit record kept after a contract is deleted.
type Tombstone struct {
	ContractID uuid.UUID
	Code       string
	LastStatus models.Status
	DeletedBy  models.Actor
	DeletedAt  time.Time
	Snapshot   *models.Contract
}

// StoreStats are the counts reported by the diagnostics endpoint.
type StoreStats struct {
	Contracts   int `json:"contracts"`
	ActiveLocks int `json:"activeLocks"`
	Deletions   int `json:"deletions"`
}

// ContractRepository is the persistence interface for the Contract aggregate.
// Every write publishes the given events in the same transaction.
type ContractRepository interface {
	// Save inserts a new contract. Returns ErrContractAlreadyExists when the
	// public code is taken.
	Save(ctx context.Context, c *models.Contract, evts ...events.Event) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)

	List(ctx context.Context, q ListQuery) ([]*models.Contract, error)

	// Update writes c if the stored version still equals expectedVersion and
	// bumps c.Version. Returns ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, c *models.Contract, expectedVersion int, evts ...events.Event) error

	// AcquireLock writes lock and status In Lavorazione in a single conditional
	// statement. It succeeds only while the stored status still equals
	// observed and the stored lock is absent, expired (acquired at or before
	// expiredBefore) or held by the same actor. Returns ErrAlreadyLocked otherwise.
	AcquireLock(ctx context.Context, id uuid.UUID, lock models.Lock, observed models.Status, expiredBefore time.Time, evts ...events.Event) (int, error)

	// ClearExpiredLock removes a lock acquired at acquiredAt if it is still
	// in place and expired, returning an In Lavorazione contract to Caricato.
	// It reports whether a row changed and, if so, the new version.
	ClearExpiredLock(ctx context.Context, id uuid.UUID, acquiredAt, expiredBefore time.Time, evts ...events.Event) (version int, cleared bool, err error)

	// Delete removes the contract and records t. Returns ErrContractNotFound
	// when nothing was deleted.
	Delete(ctx context.Context, t Tombstone, evts ...events.Event) error

	Stats(ctx context.Context, expiredBefore time.Time) (StoreStats, error)
}
