package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	pkgvalidator "github.com/ghuser/contractflow/pkg/validator"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// Update actions accepted by PUT /contracts.
const (
	ActionStatus      = "status"
	ActionLock        = "lock"
	ActionUnlock      = "unlock"
	ActionUpdateFull  = "updateFull"
	ActionForceStatus = "forceStatus"
)

// UpdateContractRequest is the body of PUT /contracts. Action selects how
// the remaining fields are read; without it the request is a status change.
type UpdateContractRequest struct {
	Action           string          `json:"action,omitempty" validate:"omitempty,oneof=status lock unlock updateFull forceStatus" example:"lock"`
	Status           string          `json:"status,omitempty" example:"Documenti OK"`
	Notes            string          `json:"notes,omitempty" validate:"max=2000"`
	StatoOfferta     *string         `json:"statoOfferta,omitempty"`
	NoteStatoOfferta *string         `json:"noteStatoOfferta,omitempty" validate:"omitempty,max=2000"`
	Contatto         *models.Contact `json:"contatto,omitempty"`
	RagioneSociale   *string         `json:"ragioneSociale,omitempty"`
	IsBusiness       *bool           `json:"isBusiness,omitempty"`
	POD              []string        `json:"pod,omitempty"`
	PDR              []string        `json:"pdr,omitempty"`
	MasterReference  *models.Actor   `json:"masterReference,omitempty"`
	NuoviPodAggiunti *bool           `json:"nuoviPodAggiunti,omitempty"`
	Lock             json.RawMessage `json:"lock,omitempty" swaggertype:"object"`
	CronologiaStati  json.RawMessage `json:"cronologiaStati,omitempty" swaggertype:"array,object"`
} // @name UpdateContractRequest

// Intent turns the request into exactly one update intent.
func (req UpdateContractRequest) Intent() (models.Update, error) {
	switch req.Action {
	case ActionLock:
		return models.LockUpdate{}, nil
	case ActionUnlock:
		return models.UnlockUpdate{}, nil
	case ActionForceStatus:
		st, note, err := req.targetStatus()
		if err != nil {
			return nil, err
		}
		return models.ForceStatusUpdate{Status: st, Note: note}, nil
	case ActionUpdateFull:
		return req.fullUpdate()
	default:
		st, note, err := req.targetStatus()
		if err != nil {
			return nil, err
		}
		return models.StatusUpdate{Status: st, Note: note}, nil
	}
}

// targetStatus accepts either status/notes or statoOfferta/noteStatoOfferta.
func (req UpdateContractRequest) targetStatus() (models.Status, string, error) {
	raw := req.Status
	if raw == "" && req.StatoOfferta != nil {
		raw = *req.StatoOfferta
	}
	if strings.TrimSpace(raw) == "" {
		return "", "", fmt.Errorf("%w: status is required", domain.ErrInvalidContract)
	}
	st, err := models.ParseStatus(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrInvalidContract, err)
	}
	note := req.Notes
	if note == "" && req.NoteStatoOfferta != nil {
		note = *req.NoteStatoOfferta
	}
	return st, note, nil
}

// fullUpdate reads statoOfferta/noteStatoOfferta, falling back to
// status/notes like targetStatus does.
func (req UpdateContractRequest) fullUpdate() (models.Update, error) {
	if len(req.Lock) > 0 {
		return nil, fmt.Errorf("%w: lock cannot be edited directly, use action lock or unlock", domain.ErrInvalidContract)
	}
	if len(req.CronologiaStati) > 0 {
		return nil, fmt.Errorf("%w: status history is append-only", domain.ErrInvalidContract)
	}
	u := models.FullUpdate{
		Contact:         req.Contatto,
		IsBusiness:      req.IsBusiness,
		CompanyName:     req.RagioneSociale,
		POD:             req.POD,
		PDR:             req.PDR,
		MasterRef:       req.MasterReference,
		NewSupplyPoints: req.NuoviPodAggiunti,
		StatusNote:      req.NoteStatoOfferta,
	}
	if u.StatusNote == nil && req.Notes != "" {
		u.StatusNote = &req.Notes
	}
	raw := req.StatoOfferta
	if raw == nil && req.Status != "" {
		raw = &req.Status
	}
	if raw != nil {
		st, err := models.ParseStatus(*raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidContract, err)
		}
		u.Status = &st
	}
	return u, nil
}

// UpdateContractHandler handles PUT /contracts?id=.
type UpdateContractHandler struct{ base }

func NewUpdateContractHandler(svc *appsvcs.Services, log logger.Logger, production bool) *UpdateContractHandler {
	return &UpdateContractHandler{newBase(svc, log, production)}
}

// Execute applies one update intent to a contract.
//
//	@Summary		Update contract
//	@Description	action=lock|unlock claims or releases the contract. action=updateFull edits customer data and supply points; lock and cronologiaStati are rejected. action=forceStatus (admin only) sets any status. Without action the request is a status change checked against the transition table and the caller's role.
//	@Tags			contracts
//	@Accept			json
//	@Produce		json
//	@Param			id		query		string					true	"Contract id"
//	@Param			request	body		UpdateContractRequest	true	"Update"
//	@Success		200		{object}	ContractResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Failure		404		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Failure		422		{object}	httpx.ErrorBody
//	@Router			/contracts [put]
func (h *UpdateContractHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSONErrorDetails(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if !pkgvalidator.WriteIfInvalid(w, &req) {
		return
	}
	intent, err := req.Intent()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.Contract.Apply(r.Context(), id, actor, intent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ContractResponse{
		Success:  true,
		Message:  updateMessage(intent),
		Contract: c,
	})
}

func updateMessage(u models.Update) string {
	switch u.(type) {
	case models.LockUpdate:
		return "Contratto bloccato"
	case models.UnlockUpdate:
		return "Contratto sbloccato"
	case models.FullUpdate:
		return "Contratto aggiornato"
	case models.ForceStatusUpdate:
		return "Stato forzato"
	default:
		return "Stato aggiornato"
	}
}
