package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/pkg/cache"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/telemetry"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

const (
	maxWriteAttempts = 3
	maxCodeAttempts  = 3
	defaultMaxUpload = 10 << 20

	// deletedVersion is the cache floor of a deleted contract; no snapshot passes it.
	deletedVersion = math.MaxInt32
)

// errNoChange aborts a mutation that would not modify the contract.
var errNoChange = errors.New("no change")

// Cache is the read-through cache for single contracts, keyed by id.
// Set must refuse a version below the floor left by Invalidate.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)
	Set(ctx context.Context, id uuid.UUID, version int, payload []byte) error
	Invalidate(ctx context.Context, id uuid.UUID, version int) error
}

// LockScheduler arranges for a lock to be cleared once it expires.
type LockScheduler interface {
	ScheduleLockExpiry(ctx context.Context, contractID uuid.UUID, lock models.Lock, expiresAt time.Time) error
}

// ContractService orchestrates the contract workflow: it loads contracts,
// runs the lock manager and transition engine on them and persists the result
// with its events. Writes are optimistic and retried on version conflicts.
type ContractService struct {
	repo      repositories.ContractRepository
	locks     *domainsvcs.LockManager
	engine    *domainsvcs.TransitionEngine
	cache     Cache
	files     blobstore.Store
	scheduler LockScheduler
	metrics   *telemetry.WorkflowMetrics
	log       logger.Logger
	maxUpload int64
	now       func() time.Time
}

// Option configures a ContractService.
type Option func(*ContractService)

func WithCache(c Cache) Option { return func(s *ContractService) { s.cache = c } }

func WithBlobStore(b blobstore.Store) Option { return func(s *ContractService) { s.files = b } }

func WithLockScheduler(ls LockScheduler) Option {
	return func(s *ContractService) { s.scheduler = ls }
}

func WithMetrics(m *telemetry.WorkflowMetrics) Option {
	return func(s *ContractService) { s.metrics = m }
}

// WithUploadLimit sets the maximum accepted document size in bytes.
func WithUploadLimit(n int64) Option {
	return func(s *ContractService) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *ContractService) { s.now = now } }

// NewContractService returns a ContractService over repo.
func NewContractService(repo repositories.ContractRepository, locks *domainsvcs.LockManager, log logger.Logger, opts ...Option) *ContractService {
	s := &ContractService{
		repo:      repo,
		locks:     locks,
		engine:    domainsvcs.NewTransitionEngine(locks),
		log:       log,
		maxUpload: defaultMaxUpload,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new contract in status Caricato. A code
// collision with a contract created in the same millisecond is retried with
// the next code.
func (s *ContractService) Create(ctx context.Context, in models.NewContractInput, creator models.Actor) (*models.Contract, error) {
	now := s.now()
	c, err := models.NewContract(in, creator, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidContract, err)
	}

	for attempt := 1; ; attempt++ {
		err = s.repo.Save(ctx, c, events.NewContractCreated(c))
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrContractAlreadyExists) || attempt == maxCodeAttempts {
			return nil, fmt.Errorf("save contract: %w", err)
		}
		c.Code = models.NewContractCode(now.Add(time.Duration(attempt) * time.Millisecond))
	}

	s.log.InfoContext(ctx, "contract created", "contract_id", c.ID, "code", c.Code, "provider", c.Provider)
	return c, nil
}

// Get returns one contract, served from the cache when possible.
func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			var c models.Contract
			if jerr := json.Unmarshal(payload, &c); jerr == nil {
				return &c, nil
			}
			s.log.WarnContext(ctx, "discarding undecodable cache entry", "contract_id", id)
		case !errors.Is(err, cache.ErrCacheMiss):
			s.log.WarnContext(ctx, "contract cache read failed", "contract_id", id, "error", err)
		}
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	s.remember(ctx, c)
	return c, nil
}

// ListParams narrows a listing. Status and CreatedBy are pushed down to the
// store; Criteria are evaluated against the loaded set.
type ListParams struct {
	Status    *models.Status
	CreatedBy string
	Criteria  domainsvcs.Criteria
}

// List returns the contracts matching p in store order.
func (s *ContractService) List(ctx context.Context, p ListParams) ([]*models.Contract, error) {
	all, err := s.repo.List(ctx, repositories.ListQuery{Status: p.Status, CreatedBy: p.CreatedBy})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return s.locks.Filter(all, p.Criteria, s.now()), nil
}

// Queue is the operator dashboard: the filtered contracts split into
// buckets, with counts.
type Queue struct {
	Buckets domainsvcs.Buckets    `json:"buckets"`
	Stats   domainsvcs.QueueStats `json:"stats"`
}

// Queue partitions the contracts matching p into work queue buckets.
func (s *ContractService) Queue(ctx context.Context, p ListParams) (*Queue, error) {
	contracts, err := s.List(ctx, p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	b := s.locks.Partition(contracts, now)
	return &Queue{Buckets: b, Stats: domainsvcs.Stats(b, contracts, now)}, nil
}

// Delete removes a contract permanently, keeping a tombstone with its last
// state. Admin only.
func (s *ContractService) Delete(ctx context.Context, id uuid.UUID, actor models.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete contracts", domain.ErrForbidden)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get contract: %w", err)
	}

	now := s.now()
	t := repositories.Tombstone{
		ContractID: c.ID,
		Code:       c.Code,
		LastStatus: c.Status,
		DeletedBy:  actor,
		DeletedAt:  now,
		Snapshot:   c,
	}
	if err := s.repo.Delete(ctx, t, events.NewContractDeleted(c, actor.ID, now)); err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	s.forget(ctx, id, deletedVersion)

	s.log.InfoContext(ctx, "contract deleted", "contract_id", id, "code", c.Code, "last_status", c.Status)
	return nil
}

// Diagnostics returns store level counts.
func (s *ContractService) Diagnostics(ctx context.Context) (repositories.StoreStats, error) {
	st, err := s.repo.Stats(ctx, s.locks.ExpiredBefore(s.now()))
	if err != nil {
		return repositories.StoreStats{}, fmt.Errorf("contract stats: %w", err)
	}
	return st, nil
}

// mutate loads the contract, lets fn change it and writes it back guarded by
// its version, reloading and retrying when another writer got there first.
// fn returns the events to publish with the write, or errNoChange.
func (s *ContractService) mutate(ctx context.Context, id uuid.UUID, fn func(c *models.Contract, now time.Time) ([]events.Event, error)) (*models.Contract, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get contract: %w", err)
		}
		expected := c.Version

		evts, err := fn(c, s.now())
		if errors.Is(err, errNoChange) {
			return c, nil
		}
		if err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, c, expected, evts...)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			s.log.DebugContext(ctx, "contract changed concurrently, retrying", "contract_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update contract: %w", err)
		}
		s.forget(ctx, id, c.Version)
		return c, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

func (s *ContractService) remember(ctx context.Context, c *models.Contract) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err == nil {
		err = s.cache.Set(ctx, c.ID, c.Version, payload)
	}
	if err != nil {
		s.log.WarnContext(ctx, "contract cache write failed", "contract_id", c.ID, "error", err)
	}
}

// forget invalidates the cached contract after a write that produced version.
func (s *ContractService) forget(ctx context.Context, id uuid.UUID, version int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id, version); err != nil {
		s.log.WarnContext(ctx, "contract cache invalidation failed", "contract_id", id, "error", err)
	}
}
