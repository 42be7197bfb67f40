package services

import (
	"slices"
	"strings"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// FieldChanges reports what ApplyFields did.
type FieldChanges struct {
	// Changed is set when any field took a new value.
	Changed bool
	// SupplyPointsAdded is set when POD or PDR gained a code, which flags the
	// contract for integration review.
	SupplyPointsAdded bool
}

// ApplyFields copies the non-status fields of u onto c.
func ApplyFields(c *models.Contract, u models.FullUpdate, now time.Time) FieldChanges {
	var fc FieldChanges
	if u.Contact != nil && *u.Contact != c.Contact {
		c.Contact = *u.Contact
		fc.Changed = true
	}
	if u.IsBusiness != nil && *u.IsBusiness != c.IsBusiness {
		c.IsBusiness = *u.IsBusiness
		fc.Changed = true
	}
	if u.CompanyName != nil {
		if name := strings.TrimSpace(*u.CompanyName); name != c.CompanyName {
			c.CompanyName = name
			fc.Changed = true
		}
	}
	if u.MasterRef != nil && (c.MasterRef == nil || *c.MasterRef != *u.MasterRef) {
		m := *u.MasterRef
		c.MasterRef = &m
		fc.Changed = true
	}

	if u.POD != nil {
		next, grew := mergeCodes(c.POD, u.POD)
		fc.Changed = fc.Changed || !slices.Equal(next, c.POD)
		fc.SupplyPointsAdded = fc.SupplyPointsAdded || grew
		c.POD = next
	}
	if u.PDR != nil {
		next, grew := mergeCodes(c.PDR, u.PDR)
		fc.Changed = fc.Changed || !slices.Equal(next, c.PDR)
		fc.SupplyPointsAdded = fc.SupplyPointsAdded || grew
		c.PDR = next
	}
	if u.NewSupplyPoints != nil && *u.NewSupplyPoints != c.NewSupplyPoints {
		c.NewSupplyPoints = *u.NewSupplyPoints
		fc.Changed = true
	}
	if fc.SupplyPointsAdded {
		c.NewSupplyPoints = true
		t := now
		c.LastIntegrationAt = &t
	}
	if fc.Changed {
		c.UpdatedAt = now
	}
	return fc
}

// mergeCodes replaces current with next and reports whether next holds a code
// current did not.
func mergeCodes(current, next []string) ([]string, bool) {
	have := make(map[string]struct{}, len(current))
	for _, c := range current {
		have[c] = struct{}{}
	}
	out := make([]string, 0, len(next))
	seen := make(map[string]struct{}, len(next))
	grew := false
	for _, c := range next {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if _, ok := have[c]; !ok {
			grew = true
		}
		out = append(out, c)
	}
	return out, grew
}
