package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/services/contract/domain"
	domainevents "github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
	"github.com/ghuser/contractflow/services/contract/infrastructure/persistence/postgres/db"
)

// ContractRepository implements repositories.ContractRepository against PostgreSQL.
type ContractRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewContractRepository returns a ContractRepository backed by the given pool.
// When bus is non-nil every write publishes its events in the same transaction.
func NewContractRepository(database *database.Database, bus *events.EventBus) *ContractRepository {
	return &ContractRepository{db: database, bus: bus}
}

var _ repositories.ContractRepository = (*ContractRepository)(nil)

// Save inserts a new contract. Returns ErrContractAlreadyExists on a code clash.
func (r *ContractRepository) Save(ctx context.Context, c *models.Contract, evts ...domainevents.Event) error {
	row, err := contractToRow(c)
	if err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).InsertContract(ctx, row); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrContractAlreadyExists
			}
			return fmt.Errorf("insert contract: %w", err)
		}
		return r.publish(tx, evts)
	})
}

// GetByID returns ErrContractNotFound when no row matches.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	row, err := db.New(r.db.DB()).GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, fmt.Errorf("query contract: %w", err)
	}
	return rowToContract(row)
}

func (r *ContractRepository) List(ctx context.Context, q repositories.ListQuery) ([]*models.Contract, error) {
	params := db.ListContractsParams{}
	if q.Status != nil {
		params.StatoOfferta = sql.NullString{String: string(*q.Status), Valid: true}
	}
	if q.CreatedBy != "" {
		params.CreatoDaID = sql.NullString{String: q.CreatedBy, Valid: true}
	}

	rows, err := db.New(r.db.DB()).ListContracts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	out := make([]*models.Contract, 0, len(rows))
	for _, row := range rows {
		c, err := rowToContract(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Update writes c guarded by expectedVersion and advances c.Version.
func (r *ContractRepository) Update(ctx context.Context, c *models.Contract, expectedVersion int, evts ...domainevents.Event) error {
	row, err := contractToRow(c)
	if err != nil {
		return err
	}
	row.Version = int32(expectedVersion)
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateContract(ctx, row)
		if err != nil {
			return fmt.Errorf("update contract: %w", err)
		}
		if n == 0 {
			return domain.ErrConcurrentUpdate
		}
		return r.publish(tx, evts)
	})
	if err != nil {
		return err
	}
	c.Version = expectedVersion + 1
	return nil
}

// AcquireLock claims the contract in a single conditional UPDATE. When the
// condition fails the row is re-read to tell a missing contract apart from
// a lost race.
func (r *ContractRepository) AcquireLock(ctx context.Context, id uuid.UUID, lock models.Lock, observed models.Status, expiredBefore time.Time, evts ...domainevents.Event) (int, error) {
	holder, err := json.Marshal(lock.Holder)
	if err != nil {
		return 0, fmt.Errorf("marshal lock holder: %w", err)
	}

	var version int32
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		v, err := db.New(tx).AcquireLock(ctx, db.AcquireLockParams{
			ID:            id,
			HolderID:      lock.Holder.ID,
			Holder:        holder,
			AcquiredAt:    lock.AcquiredAt,
			ObservedState: string(observed),
			ExpiredBefore: expiredBefore,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrAlreadyLocked
			}
			return fmt.Errorf("acquire lock: %w", err)
		}
		version = v
		return r.publish(tx, evts)
	})
	if errors.Is(err, domain.ErrAlreadyLocked) {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, domain.ErrContractNotFound) {
			return 0, getErr
		}
	}
	if err != nil {
		return 0, err
	}
	return int(version), nil
}

func (r *ContractRepository) ClearExpiredLock(ctx context.Context, id uuid.UUID, acquiredAt, expiredBefore time.Time, evts ...domainevents.Event) (int, bool, error) {
	var version int32
	var cleared bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		v, err := db.New(tx).ClearExpiredLock(ctx, db.ClearExpiredLockParams{
			ID:            id,
			AcquiredAt:    acquiredAt,
			ExpiredBefore: expiredBefore,
			Now:           time.Now().UTC(),
		})
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("clear expired lock: %w", err)
		}
		version, cleared = v, true
		return r.publish(tx, evts)
	})
	if err != nil {
		return 0, false, err
	}
	return int(version), cleared, nil
}

// Delete removes the row and writes the tombstone in one transaction.
func (r *ContractRepository) Delete(ctx context.Context, t repositories.Tombstone, evts ...domainevents.Event) error {
	deletedBy, err := json.Marshal(t.DeletedBy)
	if err != nil {
		return fmt.Errorf("marshal deleted by: %w", err)
	}
	snapshot, err := json.Marshal(t.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		n, err := q.DeleteContract(ctx, t.ContractID)
		if err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}
		if n == 0 {
			return domain.ErrContractNotFound
		}
		if err := q.InsertDeletion(ctx, db.InsertDeletionParams{
			ContractID:           t.ContractID,
			CodiceUnivocoOfferta: t.Code,
			LastStatus:           string(t.LastStatus),
			DeletedByID:          t.DeletedBy.ID,
			DeletedBy:            deletedBy,
			DeletedAt:            t.DeletedAt,
			Snapshot:             snapshot,
		}); err != nil {
			return fmt.Errorf("insert tombstone: %w", err)
		}
		return r.publish(tx, evts)
	})
}

func (r *ContractRepository) Stats(ctx context.Context, expiredBefore time.Time) (repositories.StoreStats, error) {
	row, err := db.New(r.db.DB()).ContractStats(ctx, expiredBefore)
	if err != nil {
		return repositories.StoreStats{}, fmt.Errorf("contract stats: %w", err)
	}
	return repositories.StoreStats{
		Contracts:   int(row.Contracts),
		ActiveLocks: int(row.ActiveLocks),
		Deletions:   int(row.Deletions),
	}, nil
}

func (r *ContractRepository) publish(tx *sql.Tx, evts []domainevents.Event) error {
	if r.bus == nil || len(evts) == 0 {
		return nil
	}
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	for _, evt := range evts {
		msg, err := events.NewMessage(evt.ID().String(), evt)
		if err != nil {
			return err
		}
		if err := p.Publish(evt.Topic(), msg); err != nil {
			return fmt.Errorf("publish %s: %w", evt.Topic(), err)
		}
	}
	return nil
}
