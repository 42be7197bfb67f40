package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

// ContractResponse wraps a single contract.
type ContractResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Contract *models.Contract `json:"contract"`
} // @name ContractResponse

// GetContractResponse is a contract plus the statuses the caller may move it to.
type GetContractResponse struct {
	Success        bool             `json:"success"`
	Contract       *models.Contract `json:"contract"`
	AllowedActions []models.Status  `json:"azioniConsentite"`
} // @name GetContractResponse

// GetContractHandler handles GET /contracts/{id}.
type GetContractHandler struct{ base }

func NewGetContractHandler(svc *appsvcs.Services, log logger.Logger, production bool) *GetContractHandler {
	return &GetContractHandler{newBase(svc, log, production)}
}

// Execute returns one contract with the destinations the caller's role may
// choose from its current status.
//
//	@Summary	Get contract
//	@Tags		contracts
//	@Produce	json
//	@Param		id	path		string	true	"Contract id"
//	@Success	200	{object}	GetContractResponse
//	@Failure	400	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/contracts/{id} [get]
func (h *GetContractHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.Contract.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actions := domainsvcs.Destinations(c.Status, actor.Role)
	if actions == nil {
		actions = []models.Status{}
	}
	httpx.JSON(w, http.StatusOK, GetContractResponse{Success: true, Contract: c, AllowedActions: actions})
}
