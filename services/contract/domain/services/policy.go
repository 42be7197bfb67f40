package services

import "github.com/ghuser/contractflow/services/contract/domain/models"

var (
	adminOnly       = []models.Role{models.RoleAdmin}
	operators       = []models.Role{models.RoleAdmin, models.RoleBackOffice}
	fieldAndAdmin   = []models.Role{models.RoleConsultant, models.RoleMaster, models.RoleAdmin}
	destinationRole = map[models.Status][]models.Role{
		models.StatusLoaded:      operators,
		models.StatusInProgress:  operators,
		models.StatusDocumentsOK: operators,
		models.StatusDocumentsKO: operators,
		models.StatusCancelled:   operators,
		models.StatusIntegration: fieldAndAdmin,
		models.StatusEntryOK:     adminOnly,
		models.StatusEntryKO:     adminOnly,
		models.StatusPaid:        adminOnly,
		models.StatusChargedBack: adminOnly,
	}
)

// CanEnter reports whether role may move a contract into status to.
func CanEnter(role models.Role, to models.Status) bool {
	for _, r := range destinationRole[to] {
		if r == role {
			return true
		}
	}
	return false
}

// Destinations returns the statuses role may move a contract to from from.
// This drives which actions a client offers to the user.
func Destinations(from models.Status, role models.Role) []models.Status {
	var out []models.Status
	for _, to := range allowedTransitions[from] {
		if CanEnter(role, to) {
			out = append(out, to)
		}
	}
	return out
}
