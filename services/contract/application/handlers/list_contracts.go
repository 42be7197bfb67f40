package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

// ListFilters echoes the filters a listing was computed with.
type ListFilters struct {
	Status     string `json:"status,omitempty" example:"Caricato"`
	CreatedBy  string `json:"createdBy,omitempty"`
	Search     string `json:"search,omitempty" example:"Rossi"`
	Provider   string `json:"gestore,omitempty" example:"ENEL"`
	Type       string `json:"tipologia,omitempty" example:"energia"`
	OnlyLocked bool   `json:"onlyLocked"`
	OnlyMine   bool   `json:"onlyMine"`
	UserID     string `json:"userId,omitempty"`
	DateFrom   string `json:"dateFrom,omitempty" example:"2026-01-01"`
	DateTo     string `json:"dateTo,omitempty" example:"2026-01-31"`
} // @name ListFilters

// ListContractsResponse is returned by GET /contracts.
type ListContractsResponse struct {
	Success   bool               `json:"success"`
	Contracts []*models.Contract `json:"contracts"`
	Count     int                `json:"count"`
	Filters   ListFilters        `json:"filters"`
} // @name ListContractsResponse

// parseListQuery reads the listing filters. userId defaults to the caller
// so onlyMine works without it.
func parseListQuery(q url.Values, actor models.Actor) (appsvcs.ListParams, ListFilters, error) {
	f := ListFilters{
		Status:    strings.TrimSpace(q.Get("status")),
		CreatedBy: strings.TrimSpace(q.Get("createdBy")),
		Search:    strings.TrimSpace(firstOf(q, "search", "searchTerm")),
		Provider:  strings.TrimSpace(q.Get("gestore")),
		Type:      strings.TrimSpace(q.Get("tipologia")),
		UserID:    strings.TrimSpace(q.Get("userId")),
		DateFrom:  strings.TrimSpace(q.Get("dateFrom")),
		DateTo:    strings.TrimSpace(q.Get("dateTo")),
	}
	if f.UserID == "" {
		f.UserID = actor.ID
	}

	var p appsvcs.ListParams
	var err error
	if f.OnlyLocked, err = parseBool(q, "onlyLocked"); err != nil {
		return p, f, err
	}
	if f.OnlyMine, err = parseBool(q, "onlyMine"); err != nil {
		return p, f, err
	}

	if f.Status != "" && !strings.EqualFold(f.Status, domainsvcs.FilterAll) {
		st, err := models.ParseStatus(f.Status)
		if err != nil {
			return p, f, fmt.Errorf("%w: %w", domain.ErrInvalidContract, err)
		}
		p.Status = &st
	}
	p.CreatedBy = f.CreatedBy
	p.Criteria = domainsvcs.Criteria{
		SearchTerm: f.Search,
		Provider:   f.Provider,
		Type:       f.Type,
		OnlyMine:   f.OnlyMine,
		OnlyLocked: f.OnlyLocked,
		ActorID:    f.UserID,
	}
	if f.DateFrom != "" {
		d, err := models.ParseDate(f.DateFrom)
		if err != nil {
			return p, f, fmt.Errorf("%w: dateFrom: %w", domain.ErrInvalidContract, err)
		}
		p.Criteria.DateFrom = &d
	}
	if f.DateTo != "" {
		d, err := models.ParseDate(f.DateTo)
		if err != nil {
			return p, f, fmt.Errorf("%w: dateTo: %w", domain.ErrInvalidContract, err)
		}
		p.Criteria.DateTo = &d
	}
	return p, f, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidContract, key)
	}
	return b, nil
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// ListContractsHandler handles GET /contracts.
type ListContractsHandler struct{ base }

func NewListContractsHandler(svc *appsvcs.Services, log logger.Logger, production bool) *ListContractsHandler {
	return &ListContractsHandler{newBase(svc, log, production)}
}

// Execute lists contracts.
//
//	@Summary		List contracts
//	@Description	Lists contracts matching the filters. status and createdBy are exact matches; gestore and tipologia accept "all".
//	@Tags			contracts
//	@Produce		json
//	@Param			status		query		string	false	"Workflow status"
//	@Param			createdBy	query		string	false	"Creator id"
//	@Param			search		query		string	false	"Name, surname, fiscal code or offer code"
//	@Param			gestore		query		string	false	"Provider"
//	@Param			tipologia	query		string	false	"energia or telefonia"
//	@Param			onlyLocked	query		bool	false	"Only contracts with an active lock"
//	@Param			onlyMine	query		bool	false	"Only contracts created or locked by userId"
//	@Param			userId		query		string	false	"Defaults to the caller"
//	@Param			dateFrom	query		string	false	"YYYY-MM-DD, inclusive"
//	@Param			dateTo		query		string	false	"YYYY-MM-DD, inclusive"
//	@Success		200			{object}	ListContractsResponse
//	@Failure		400			{object}	httpx.ErrorBody
//	@Failure		401			{object}	httpx.ErrorBody
//	@Router			/contracts [get]
func (h *ListContractsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	params, filters, err := parseListQuery(r.URL.Query(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	contracts, err := h.svc.Contract.List(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ListContractsResponse{
		Success:   true,
		Contracts: contracts,
		Count:     len(contracts),
		Filters:   filters,
	})
}
