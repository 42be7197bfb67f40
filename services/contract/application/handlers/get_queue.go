package handlers

import (
	"net/http"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

// QueueResponse is returned by GET /contracts/queue.
type QueueResponse struct {
	Success bool                  `json:"success"`
	Buckets domainsvcs.Buckets    `json:"buckets"`
	Stats   domainsvcs.QueueStats `json:"stats"`
	Filters ListFilters           `json:"filters"`
} // @name QueueResponse

// GetQueueHandler handles GET /contracts/queue.
type GetQueueHandler struct{ base }

func NewGetQueueHandler(svc *appsvcs.Services, log logger.Logger, production bool) *GetQueueHandler {
	return &GetQueueHandler{newBase(svc, log, production)}
}

// Execute returns the work queue.
//
//	@Summary		Work queue
//	@Description	Splits the filtered contracts into the to-work, in-progress, needs-integration and completed views.
//	@Tags			contracts
//	@Produce		json
//	@Param			search		query		string	false	"Name, surname, fiscal code or offer code"
//	@Param			gestore		query		string	false	"Provider"
//	@Param			tipologia	query		string	false	"energia or telefonia"
//	@Param			onlyLocked	query		bool	false	"Only contracts with an active lock"
//	@Param			onlyMine	query		bool	false	"Only contracts created or locked by userId"
//	@Success		200			{object}	QueueResponse
//	@Failure		400			{object}	httpx.ErrorBody
//	@Router			/contracts/queue [get]
func (h *GetQueueHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	params, filters, err := parseListQuery(r.URL.Query(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q, err := h.svc.Contract.Queue(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, QueueResponse{
		Success: true,
		Buckets: q.Buckets,
		Stats:   q.Stats,
		Filters: filters,
	})
}
