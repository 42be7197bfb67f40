package handlers

import (
	"net/http"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
)

// DeleteContractHandler handles DELETE /contracts?id=.
type DeleteContractHandler struct{ base }

func NewDeleteContractHandler(svc *appsvcs.Services, log logger.Logger, production bool) *DeleteContractHandler {
	return &DeleteContractHandler{newBase(svc, log, production)}
}

// Execute deletes a contract. Admin only; the deletion cannot be undone.
//
//	@Summary	Delete contract
//	@Tags		contracts
//	@Produce	json
//	@Param		id	query		string	true	"Contract id"
//	@Success	200	{object}	httpx.MessageBody
//	@Failure	403	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/contracts [delete]
func (h *DeleteContractHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Contract.Delete(r.Context(), id, actor); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, "Contratto eliminato")
}
