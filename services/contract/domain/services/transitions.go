// Package services holds the pure workflow rules of the contract domain:
// the transition table, the role policy, lock arbitration, queue buckets
// and list filtering. Nothing here performs I/O; callers pass the clock in.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

var allowedTransitions = map[models.Status][]models.Status{
	models.StatusLoaded:      {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:  {models.StatusDocumentsOK, models.StatusDocumentsKO, models.StatusLoaded},
	models.StatusDocumentsOK: {models.StatusEntryOK, models.StatusEntryKO, models.StatusInProgress},
	models.StatusDocumentsKO: {models.StatusIntegration},
	models.StatusIntegration: {models.StatusInProgress},
	models.StatusEntryOK:     {models.StatusPaid, models.StatusChargedBack},
	models.StatusEntryKO:     {models.StatusInProgress, models.StatusCancelled},
	models.StatusPaid:        {},
	models.StatusChargedBack: {models.StatusInProgress},
	models.StatusCancelled:   {models.StatusInProgress},
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to models.Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition records one status change on a contract.
type Transition struct {
	From  models.Status
	To    models.Status
	Entry models.HistoryEntry
	// Unlocked is true when the change released the contract lock.
	Unlocked bool
}

// TransitionEngine applies status changes to a contract, enforcing the
// transition table, the role policy, lock ownership and note requirements.
type TransitionEngine struct {
	locks *LockManager
}

// NewTransitionEngine returns an engine that consults locks for ownership checks.
func NewTransitionEngine(locks *LockManager) *TransitionEngine {
	return &TransitionEngine{locks: locks}
}

// Apply performs a manual transition requested by actor.
func (e *TransitionEngine) Apply(c *models.Contract, to models.Status, actor models.Actor, note string, now time.Time) (Transition, error) {
	if !to.Valid() {
		return Transition{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, to)
	}
	if !CanTransition(c.Status, to) {
		return Transition{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, to)
	}
	if !CanEnter(actor.Role, to) {
		return Transition{}, fmt.Errorf("%w: role %q cannot set %s", domain.ErrForbidden, actor.Role, to)
	}
	if e.locks.IsLocked(c, now) && !e.locks.IsHeldBy(c, actor.ID) && !actor.IsAdmin() {
		return Transition{}, domain.ErrAlreadyLocked
	}
	note = strings.TrimSpace(note)
	if requiresNote(to) && note == "" {
		return Transition{}, fmt.Errorf("%w: %s", domain.ErrMissingReason, to)
	}
	return e.record(c, to, actor, note, now, false, false), nil
}

// ApplyAutomated performs a transition triggered by the system, such as a
// document upload on a contract waiting for integration. Role checks are
// skipped; only the transition table applies.
func (e *TransitionEngine) ApplyAutomated(c *models.Contract, to models.Status, actor models.Actor, note string, now time.Time) (Transition, error) {
	if !CanTransition(c.Status, to) {
		return Transition{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, to)
	}
	return e.record(c, to, actor, note, now, true, false), nil
}

// Force sets any status regardless of the transition table. Admin only; the
// note is mandatory and the history entry is flagged as forced.
func (e *TransitionEngine) Force(c *models.Contract, to models.Status, actor models.Actor, note string, now time.Time) (Transition, error) {
	if !to.Valid() {
		return Transition{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, to)
	}
	if !actor.IsAdmin() {
		return Transition{}, fmt.Errorf("%w: only admins can force a status", domain.ErrForbidden)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return Transition{}, fmt.Errorf("%w: forced status change", domain.ErrMissingReason)
	}
	return e.record(c, to, actor, note, now, false, true), nil
}

func (e *TransitionEngine) record(c *models.Contract, to models.Status, actor models.Actor, note string, now time.Time, automated, forced bool) Transition {
	// History timestamps never go backwards even if the caller's clock does.
	at := now
	if last := c.LastChange(); last != nil && at.Before(last.ChangedAt) {
		at = last.ChangedAt
	}

	from := c.Status
	entry := models.HistoryEntry{
		Status:     to,
		ChangedAt:  at,
		ChangedBy:  actor,
		Note:       note,
		Automated:  automated,
		Forced:     forced,
		FromStatus: from,
	}
	c.History = append(c.History, entry)
	c.Status = to
	c.StatusNote = note
	c.UpdatedAt = now
	if to == models.StatusIntegration {
		t := at
		c.LastIntegrationAt = &t
	}

	t := Transition{From: from, To: to, Entry: entry}
	if (from == models.StatusInProgress || forced) && c.Lock != nil && to != models.StatusInProgress {
		c.Lock = nil
		t.Unlocked = true
	}
	return t
}

func requiresNote(to models.Status) bool {
	return to == models.StatusDocumentsKO
}
