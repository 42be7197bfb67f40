package services_test

import (
	"testing"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/services"
)

func filterFixture(now time.Time) []*models.Contract {
	a := withCode(newContract(models.StatusLoaded), "CON-100")
	a.Contact = models.Contact{FirstName: "Giulia", LastName: "Bianchi", FiscalCode: "BNCGLI85C41F205X"}
	a.Provider = "Enel"
	a.Type = models.ContractTypeEnergy
	a.CreatedOn = models.DateOf(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	b := withCode(newContract(models.StatusInProgress), "CON-200")
	b.Contact = models.Contact{FirstName: "Luca", LastName: "Verdi", FiscalCode: "VRDLCU90D15L219K"}
	b.Provider = "TIM"
	b.Type = models.ContractTypeTelecoms
	b.CreatedBy = master
	b.Lock = &models.Lock{Holder: backOffice, AcquiredAt: now.Add(-time.Minute)}
	b.CreatedOn = models.DateOf(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	c := withCode(newContract(models.StatusDocumentsOK), "CON-300")
	c.Contact = models.Contact{FirstName: "Paolo", LastName: "Neri", FiscalCode: "NRIPLA70A01H501Z"}
	c.Provider = "Enel"
	c.CreatedBy = master
	c.CreatedOn = models.DateOf(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	return []*models.Contract{a, b, c}
}

func TestFilter(t *testing.T) {
	locks := services.NewLockManager(30 * time.Minute)
	now := t0
	date := func(s string) *models.Date {
		d, err := models.ParseDate(s)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		return &d
	}

	tests := []struct {
		name string
		crit services.Criteria
		want []string
	}{
		{"no criteria", services.Criteria{}, []string{"CON-100", "CON-200", "CON-300"}},
		{"search surname case-insensitive", services.Criteria{SearchTerm: "bianCHI"}, []string{"CON-100"}},
		{"search fiscal code", services.Criteria{SearchTerm: "vrdlcu"}, []string{"CON-200"}},
		{"search offer code", services.Criteria{SearchTerm: "con-3"}, []string{"CON-300"}},
		{"provider", services.Criteria{Provider: "Enel"}, []string{"CON-100", "CON-300"}},
		{"provider is case-sensitive", services.Criteria{Provider: "ENEL"}, []string{}},
		{"provider all", services.Criteria{Provider: "all"}, []string{"CON-100", "CON-200", "CON-300"}},
		{"type", services.Criteria{Type: "telefonia"}, []string{"CON-200"}},
		{"type is case-sensitive", services.Criteria{Type: "Telefonia"}, []string{}},
		{"only mine by creator", services.Criteria{OnlyMine: true, ActorID: consultant.ID}, []string{"CON-100"}},
		{"only mine by lock holder", services.Criteria{OnlyMine: true, ActorID: backOffice.ID}, []string{"CON-200"}},
		{"only locked", services.Criteria{OnlyLocked: true}, []string{"CON-200"}},
		{"date range inclusive", services.Criteria{DateFrom: date("2026-03-05"), DateTo: date("2026-03-10")}, []string{"CON-200", "CON-300"}},
		{"combined", services.Criteria{Provider: "Enel", DateFrom: date("2026-03-02")}, []string{"CON-300"}},
		{"nothing matches", services.Criteria{SearchTerm: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(locks.Filter(filterFixture(now), tt.crit, now))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFilter_ExpiredLockIsNotMine(t *testing.T) {
	locks := services.NewLockManager(30 * time.Minute)
	now := t0.Add(2 * time.Hour)
	got := locks.Filter(filterFixture(t0), services.Criteria{OnlyMine: true, ActorID: backOffice.ID}, now)
	if len(got) != 0 {
		t.Fatalf("expected no contracts once the lock expired, got %v", ids(got))
	}
}
