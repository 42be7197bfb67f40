package services

import (
	"strings"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// FilterAll disables the provider and type filters.
const FilterAll = "all"

// Criteria are the list filters. All set criteria must match.
type Criteria struct {
	SearchTerm string
	// Provider and Type match exactly.
	Provider   string
	Type       string
	OnlyMine   bool
	OnlyLocked bool
	// ActorID is the caller, used by OnlyMine.
	ActorID  string
	DateFrom *models.Date
	DateTo   *models.Date
}

// Filter returns the contracts matching crit, preserving order.
func (m *LockManager) Filter(contracts []*models.Contract, crit Criteria, now time.Time) []*models.Contract {
	term := strings.ToLower(strings.TrimSpace(crit.SearchTerm))
	out := make([]*models.Contract, 0, len(contracts))
	for _, c := range contracts {
		if term != "" && !matchesTerm(c, term) {
			continue
		}
		if active(crit.Provider) && c.Provider != crit.Provider {
			continue
		}
		if active(crit.Type) && string(c.Type) != crit.Type {
			continue
		}
		locked := m.IsLocked(c, now)
		if crit.OnlyMine && c.CreatedBy.ID != crit.ActorID && !(locked && m.IsHeldBy(c, crit.ActorID)) {
			continue
		}
		if crit.OnlyLocked && !locked {
			continue
		}
		if crit.DateFrom != nil && c.CreatedOn.Before(*crit.DateFrom) {
			continue
		}
		if crit.DateTo != nil && c.CreatedOn.After(*crit.DateTo) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func active(v string) bool {
	return v != "" && v != FilterAll
}

func matchesTerm(c *models.Contract, term string) bool {
	fields := []string{
		c.Contact.FirstName,
		c.Contact.LastName,
		c.Contact.FiscalCode,
		c.Code,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
