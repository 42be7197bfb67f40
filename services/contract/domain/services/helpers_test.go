package services_test

import (
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

var (
	t0          = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	admin       = models.Actor{ID: "u-admin", Name: "Anna Admin", Role: models.RoleAdmin}
	backOffice  = models.Actor{ID: "u-bo", Name: "Bruno Office", Role: models.RoleBackOffice}
	backOffice2 = models.Actor{ID: "u-bo2", Name: "Bianca Office", Role: models.RoleBackOffice}
	consultant  = models.Actor{ID: "u-cons", Name: "Carla Consulente", Role: models.RoleConsultant}
	master      = models.Actor{ID: "u-master", Name: "Mario Master", Role: models.RoleMaster}
)

func newContract(status models.Status) *models.Contract {
	return &models.Contract{
		Code:      "CON-1",
		CreatedOn: models.DateOf(t0),
		CreatedBy: consultant,
		Contact:   models.Contact{FirstName: "Mario", LastName: "Rossi", FiscalCode: "RSSMRA80A01H501U"},
		Status:    status,
		History: []models.HistoryEntry{{
			Status: status, ChangedAt: t0, ChangedBy: consultant,
		}},
		Provider: "Enel",
		Type:     models.ContractTypeEnergy,
		Version:  1,
	}
}
