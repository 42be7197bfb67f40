package services

import (
	"fmt"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// DefaultLockDuration is how long a claim stays active without being refreshed.
const DefaultLockDuration = 30 * time.Minute

// LockManager decides whether a contract lock is active and who may take or
// release it. Expiry is evaluated lazily against the caller's clock.
type LockManager struct {
	duration time.Duration
}

// NewLockManager returns a LockManager. A non-positive duration falls back to DefaultLockDuration.
func NewLockManager(duration time.Duration) *LockManager {
	if duration <= 0 {
		duration = DefaultLockDuration
	}
	return &LockManager{duration: duration}
}

func (m *LockManager) Duration() time.Duration {
	return m.duration
}

// IsLocked reports whether c carries a lock younger than the lock duration.
func (m *LockManager) IsLocked(c *models.Contract, now time.Time) bool {
	if c.Lock == nil {
		return false
	}
	return now.Sub(c.Lock.AcquiredAt) < m.duration
}

// IsHeldBy reports whether actorID is the recorded holder, active or not.
func (m *LockManager) IsHeldBy(c *models.Contract, actorID string) bool {
	return c.Lock != nil && c.Lock.Holder.ID == actorID
}

// ExpiredBefore returns the cut-off: locks acquired at or before it are expired.
func (m *LockManager) ExpiredBefore(now time.Time) time.Time {
	return now.Add(-m.duration)
}

// ExpiresAt returns when l stops being active.
func (m *LockManager) ExpiresAt(l models.Lock) time.Time {
	return l.AcquiredAt.Add(m.duration)
}

// Acquire validates that actor may claim c and applies the lock, moving the
// contract to In Lavorazione. The same holder re-acquiring refreshes the
// timestamp. No history entry is written for a claim.
func (m *LockManager) Acquire(c *models.Contract, actor models.Actor, now time.Time) (models.Lock, error) {
	if !CanEnter(actor.Role, models.StatusInProgress) {
		return models.Lock{}, fmt.Errorf("%w: role %q cannot work contracts", domain.ErrForbidden, actor.Role)
	}
	if m.IsLocked(c, now) && !m.IsHeldBy(c, actor.ID) {
		return models.Lock{}, domain.ErrAlreadyLocked
	}
	if c.Status != models.StatusInProgress && !CanTransition(c.Status, models.StatusInProgress) {
		return models.Lock{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, models.StatusInProgress)
	}

	lock := models.Lock{Holder: actor, AcquiredAt: now}
	c.Lock = &lock
	c.Status = models.StatusInProgress
	c.UpdatedAt = now
	return lock, nil
}

// Release clears the lock and returns a contract still In Lavorazione to
// Caricato. An active lock may only be released by its holder or an admin;
// an expired one may be cleared by anyone. Releasing an unlocked contract
// is a no-op that reports false.
func (m *LockManager) Release(c *models.Contract, actor models.Actor, now time.Time) (bool, error) {
	if c.Lock == nil {
		return false, nil
	}
	if m.IsLocked(c, now) && !m.IsHeldBy(c, actor.ID) && !actor.IsAdmin() {
		return false, domain.ErrLockNotHeld
	}
	c.Lock = nil
	if c.Status == models.StatusInProgress {
		c.Status = models.StatusLoaded
	}
	c.UpdatedAt = now
	return true, nil
}
