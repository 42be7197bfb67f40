package postgres

import (
	"testing"
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

func TestContractRowMapping_PreservesLockAndHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	creator := models.Actor{ID: "u-1", Name: "Carla", Role: models.RoleConsultant}
	c, err := models.NewContract(models.NewContractInput{
		Contact: models.Contact{FirstName: "Mario", LastName: "Rossi"},
		POD:     []string{"IT001E1"},
	}, creator, now)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	c.Lock = &models.Lock{Holder: models.Actor{ID: "u-bo", Name: "Bruno", Role: models.RoleBackOffice}, AcquiredAt: now}
	c.Status = models.StatusInProgress
	c.History = append(c.History, models.HistoryEntry{Status: models.StatusInProgress, ChangedAt: now, ChangedBy: creator})

	row, err := contractToRow(c)
	if err != nil {
		t.Fatalf("contractToRow: %v", err)
	}
	if !row.LockHolderID.Valid || row.LockHolderID.String != "u-bo" {
		t.Fatalf("lock holder id = %+v", row.LockHolderID)
	}
	if row.MasterReference != nil {
		t.Fatal("absent master reference must map to NULL")
	}

	got, err := rowToContract(row)
	if err != nil {
		t.Fatalf("rowToContract: %v", err)
	}
	if got.Lock == nil || got.Lock.Holder.Role != models.RoleBackOffice || !got.Lock.AcquiredAt.Equal(now) {
		t.Fatalf("lock = %+v", got.Lock)
	}
	if len(got.History) != 1 || got.History[0].ChangedBy.ID != creator.ID {
		t.Fatalf("history = %+v", got.History)
	}
	if got.CreatedOn != c.CreatedOn {
		t.Fatalf("created on = %s, want %s", got.CreatedOn, c.CreatedOn)
	}
}

func TestContractToRow_EmptyCollectionsAreArrays(t *testing.T) {
	row, err := contractToRow(&models.Contract{Status: models.StatusLoaded})
	if err != nil {
		t.Fatalf("contractToRow: %v", err)
	}
	for name, b := range map[string][]byte{
		"cronologia_stati": row.CronologiaStati,
		"documenti":        row.Documenti,
		"pod":              row.Pod,
	} {
		if string(b) != "[]" {
			t.Errorf("%s = %s, want []", name, b)
		}
	}
}
