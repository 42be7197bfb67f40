package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

// Apply dispatches an update intent to the matching operation.
func (s *ContractService) Apply(ctx context.Context, id uuid.UUID, actor models.Actor, u models.Update) (*models.Contract, error) {
	switch u := u.(type) {
	case models.StatusUpdate:
		return s.UpdateStatus(ctx, id, actor, u.Status, u.Note)
	case models.LockUpdate:
		return s.Lock(ctx, id, actor)
	case models.UnlockUpdate:
		return s.Unlock(ctx, id, actor)
	case models.FullUpdate:
		return s.UpdateFull(ctx, id, actor, u)
	case models.ForceStatusUpdate:
		return s.ForceStatus(ctx, id, actor, u.Status, u.Note)
	default:
		return nil, fmt.Errorf("%w: unsupported update %T", domain.ErrInvalidContract, u)
	}
}

// UpdateStatus moves a contract to status to through the transition engine.
// Entering In Lavorazione this way also claims the contract for actor.
func (s *ContractService) UpdateStatus(ctx context.Context, id uuid.UUID, actor models.Actor, to models.Status, note string) (*models.Contract, error) {
	var tr domainsvcs.Transition
	c, err := s.mutate(ctx, id, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		var err error
		if tr, err = s.engine.Apply(c, to, actor, note, now); err != nil {
			return nil, err
		}
		return s.transitionEvents(c, tr, actor, now), nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyLocked) {
			s.metrics.LockConflict(ctx)
		}
		return nil, err
	}
	s.recordTransition(ctx, c, tr)
	return c, nil
}

// ForceStatus sets any status, bypassing the transition table. Admin only,
// with a mandatory note; the history entry is flagged as forced.
func (s *ContractService) ForceStatus(ctx context.Context, id uuid.UUID, actor models.Actor, to models.Status, note string) (*models.Contract, error) {
	var tr domainsvcs.Transition
	c, err := s.mutate(ctx, id, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		var err error
		if tr, err = s.engine.Force(c, to, actor, note, now); err != nil {
			return nil, err
		}
		return s.transitionEvents(c, tr, actor, now), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WarnContext(ctx, "contract status forced",
		"contract_id", c.ID,
		"code", c.Code,
		"from", tr.From,
		"to", tr.To,
		"actor_id", actor.ID,
		"note", tr.Entry.Note,
	)
	s.recordTransition(ctx, c, tr)
	return c, nil
}

// Lock claims the contract for actor and moves it to In Lavorazione. The
// write only lands if nobody else claimed or moved the contract since it was
// read; otherwise the check is repeated against the fresh state.
func (s *ContractService) Lock(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Contract, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get contract: %w", err)
		}
		observed := c.Status
		now := s.now()

		lock, err := s.locks.Acquire(c, actor, now)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyLocked) {
				s.metrics.LockConflict(ctx)
			}
			return nil, err
		}

		expiresAt := s.locks.ExpiresAt(lock)
		version, err := s.repo.AcquireLock(ctx, id, lock, observed, s.locks.ExpiredBefore(now),
			events.NewContractLocked(c, lock, expiresAt))
		if errors.Is(err, domain.ErrAlreadyLocked) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		c.Version = version
		s.forget(ctx, id, version)
		s.scheduleExpiry(ctx, c.ID, lock, expiresAt)

		s.log.InfoContext(ctx, "contract locked", "contract_id", c.ID, "expires_at", expiresAt)
		return c, nil
	}
	s.metrics.LockConflict(ctx)
	return nil, domain.ErrAlreadyLocked
}

// Unlock releases the lock and returns the contract to the queue. Unlocking
// a contract with no lock is a no-op.
func (s *ContractService) Unlock(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Contract, error) {
	return s.mutate(ctx, id, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		expired := c.Lock != nil && !s.locks.IsLocked(c, now)
		released, err := s.locks.Release(c, actor, now)
		if err != nil {
			return nil, err
		}
		if !released {
			return nil, errNoChange
		}
		return []events.Event{events.NewContractUnlocked(c, actor.ID, now, expired)}, nil
	})
}

// UpdateFull merges the non-status fields of u. A status in u goes through
// the transition engine like any other status change. Back office and admin
// only; an active lock held by another operator blocks the edit.
func (s *ContractService) UpdateFull(ctx context.Context, id uuid.UUID, actor models.Actor, u models.FullUpdate) (*models.Contract, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleBackOffice {
		return nil, fmt.Errorf("%w: role %q cannot edit contracts", domain.ErrForbidden, actor.Role)
	}

	var tr domainsvcs.Transition
	c, err := s.mutate(ctx, id, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		tr = domainsvcs.Transition{}
		if s.locks.IsLocked(c, now) && !s.locks.IsHeldBy(c, actor.ID) && !actor.IsAdmin() {
			return nil, domain.ErrAlreadyLocked
		}

		changed := domainsvcs.ApplyFields(c, u, now).Changed
		var evts []events.Event
		switch {
		case u.Status != nil && *u.Status != c.Status:
			note := ""
			if u.StatusNote != nil {
				note = *u.StatusNote
			}
			var err error
			if tr, err = s.engine.Apply(c, *u.Status, actor, note, now); err != nil {
				return nil, err
			}
			evts = s.transitionEvents(c, tr, actor, now)
			changed = true
		case u.StatusNote != nil && *u.StatusNote != c.StatusNote:
			c.StatusNote = *u.StatusNote
			c.UpdatedAt = now
			changed = true
		}
		if !changed {
			return nil, errNoChange
		}
		return evts, nil
	})
	if err != nil {
		return nil, err
	}
	if tr.To != "" {
		s.recordTransition(ctx, c, tr)
	}
	return c, nil
}

// ReleaseExpiredLock clears the lock acquired at acquiredAt if it has expired
// and nobody re-acquired the contract since. Deleted contracts are ignored.
func (s *ContractService) ReleaseExpiredLock(ctx context.Context, id uuid.UUID, acquiredAt time.Time) (bool, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrContractNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get contract: %w", err)
	}

	now := s.now()
	version, cleared, err := s.repo.ClearExpiredLock(ctx, id, acquiredAt, s.locks.ExpiredBefore(now),
		events.NewContractUnlocked(c, models.SystemActor().ID, now, true))
	if err != nil {
		return false, fmt.Errorf("clear expired lock: %w", err)
	}
	if cleared {
		s.forget(ctx, id, version)
		s.log.InfoContext(ctx, "expired lock released", "contract_id", id, "acquired_at", acquiredAt)
	}
	return cleared, nil
}

// SweepExpiredLocks releases every expired lock still stored and reports how
// many were cleared.
func (s *ContractService) SweepExpiredLocks(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx, repositories.ListQuery{})
	if err != nil {
		return 0, fmt.Errorf("list contracts: %w", err)
	}
	now := s.now()
	cleared := 0
	for _, c := range all {
		if c.Lock == nil || s.locks.IsLocked(c, now) {
			continue
		}
		ok, err := s.ReleaseExpiredLock(ctx, c.ID, c.Lock.AcquiredAt)
		if err != nil {
			return cleared, err
		}
		if ok {
			cleared++
		}
	}
	return cleared, nil
}

// transitionEvents builds the events for tr. A status update that enters In
// Lavorazione claims the contract for actor.
func (s *ContractService) transitionEvents(c *models.Contract, tr domainsvcs.Transition, actor models.Actor, now time.Time) []events.Event {
	evts := []events.Event{events.NewStatusChanged(c, tr.Entry)}
	if tr.Unlocked {
		evts = append(evts, events.NewContractUnlocked(c, actor.ID, now, false))
	}
	if tr.To == models.StatusInProgress && !tr.Entry.Automated {
		lock := models.Lock{Holder: actor, AcquiredAt: now}
		c.Lock = &lock
		evts = append(evts, events.NewContractLocked(c, lock, s.locks.ExpiresAt(lock)))
	}
	return evts
}

func (s *ContractService) recordTransition(ctx context.Context, c *models.Contract, tr domainsvcs.Transition) {
	s.metrics.Transition(ctx, string(tr.From), string(tr.To), tr.Entry.Automated, tr.Entry.Forced)
	s.log.InfoContext(ctx, "contract status changed",
		"contract_id", c.ID,
		"from", tr.From,
		"to", tr.To,
		"automated", tr.Entry.Automated,
	)
	if tr.To == models.StatusInProgress && c.Lock != nil {
		s.scheduleExpiry(ctx, c.ID, *c.Lock, s.locks.ExpiresAt(*c.Lock))
	}
}

func (s *ContractService) scheduleExpiry(ctx context.Context, id uuid.UUID, lock models.Lock, expiresAt time.Time) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.ScheduleLockExpiry(ctx, id, lock, expiresAt); err != nil {
		s.log.WarnContext(ctx, "lock expiry scheduling failed", "contract_id", id, "error", err)
	}
}
