package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	pkgvalidator "github.com/ghuser/contractflow/pkg/validator"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// ContractData is the customer and offer data of a new contract.
type ContractData struct {
	Contatto       models.Contact `json:"contatto" validate:"required"`
	IsBusiness     bool           `json:"isBusiness"`
	RagioneSociale string         `json:"ragioneSociale,omitempty" validate:"required_if=IsBusiness true,max=255"`
	Offerte        []models.Offer `json:"offerte" validate:"dive"`
	POD            []string       `json:"pod,omitempty" validate:"dive,max=32"`
	PDR            []string       `json:"pdr,omitempty" validate:"dive,max=32"`
	Note           string         `json:"note,omitempty" validate:"max=2000"`
} // @name ContractData

// SaveContractRequest is the body of POST /save-contract.
type SaveContractRequest struct {
	ContractData    ContractData  `json:"contractData" validate:"required"`
	UserID          string        `json:"userId" validate:"required" example:"u-123"`
	UserName        string        `json:"userName" validate:"required" example:"Mario"`
	UserSurname     string        `json:"userSurname" example:"Rossi"`
	MasterReference *models.Actor `json:"masterReference,omitempty"`
} // @name SaveContractRequest

// SavedContract identifies a newly created contract.
type SavedContract struct {
	ContractID uuid.UUID `json:"contractId" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code       string    `json:"codiceUnivocoOfferta" example:"CON-1767225600000"`
} // @name SavedContract

// SaveContractResponse is returned on successful contract creation.
type SaveContractResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    SavedContract `json:"data"`
} // @name SaveContractResponse

// SaveContractHandler handles POST /save-contract.
type SaveContractHandler struct{ base }

func NewSaveContractHandler(svc *appsvcs.Services, log logger.Logger, production bool) *SaveContractHandler {
	return &SaveContractHandler{newBase(svc, log, production)}
}

// Execute creates a contract in status Caricato.
//
//	@Summary		Save contract
//	@Description	Creates a contract in status Caricato with an empty status history. Only admins may save on behalf of another user.
//	@Tags			contracts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SaveContractRequest	true	"Contract"
//	@Success		201		{object}	SaveContractResponse
//	@Failure		400		{object}	pkgvalidator.FieldErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Router			/save-contract [post]
func (h *SaveContractHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SaveContractRequest](w, r)
	if !ok {
		return
	}

	creator, err := creatorOf(req, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d := req.ContractData
	c, err := h.svc.Contract.Create(r.Context(), models.NewContractInput{
		Contact:     d.Contatto,
		IsBusiness:  d.IsBusiness,
		CompanyName: d.RagioneSociale,
		Offers:      d.Offerte,
		POD:         d.POD,
		PDR:         d.PDR,
		MasterRef:   req.MasterReference,
		Note:        d.Note,
	}, creator)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, SaveContractResponse{
		Success: true,
		Message: "Contratto salvato",
		Data:    SavedContract{ContractID: c.ID, Code: c.Code},
	})
}

// creatorOf returns the actor recorded as creator. Callers save for
// themselves; an admin may save on behalf of the consultant named in req.
func creatorOf(req *SaveContractRequest, caller models.Actor) (models.Actor, error) {
	name := strings.TrimSpace(req.UserName + " " + req.UserSurname)
	if req.UserID == caller.ID {
		return models.Actor{ID: caller.ID, Name: name, Role: caller.Role}, nil
	}
	if !caller.IsAdmin() {
		return models.Actor{}, fmt.Errorf("%w: cannot save a contract for user %s", domain.ErrForbidden, req.UserID)
	}
	return models.Actor{ID: req.UserID, Name: name, Role: models.RoleConsultant}, nil
}
