package models

// Update is one of the tagged intents accepted by the contract update
// endpoint. Exactly one concrete type is produced per request.
type Update interface {
	isUpdate()
}

// StatusUpdate moves the contract to a new status through the transition table.
type StatusUpdate struct {
	Status Status
	Note   string
}

// LockUpdate claims the contract for the acting operator.
type LockUpdate struct{}

// UnlockUpdate releases the contract lock.
type UnlockUpdate struct{}

// ForceStatusUpdate lets an admin set any status, bypassing the transition table.
type ForceStatusUpdate struct {
	Status Status
	Note   string
}

// FullUpdate replaces editable fields. Nil fields are left unchanged.
type FullUpdate struct {
	Contact         *Contact
	IsBusiness      *bool
	CompanyName     *string
	POD             []string
	PDR             []string
	MasterRef       *Actor
	// NewSupplyPoints lets an operator clear the integration flag once reviewed.
	NewSupplyPoints *bool
	Status          *Status
	StatusNote      *string
}

func (StatusUpdate) isUpdate()      {}
func (LockUpdate) isUpdate()        {}
func (UnlockUpdate) isUpdate()      {}
func (ForceStatusUpdate) isUpdate() {}
func (FullUpdate) isUpdate()        {}
