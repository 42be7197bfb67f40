package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/auth"
	"github.com/ghuser/contractflow/pkg/errhttp"
	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// base carries what every contract handler needs.
type base struct {
	svc        *appsvcs.Services
	log        logger.Logger
	production bool
}

func newBase(svc *appsvcs.Services, log logger.Logger, production bool) base {
	return base{svc: svc, log: log, production: production}
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	errhttp.Respond(w, r, b.log, b.production, err)
}

// actor resolves the caller set by auth.RequireActor. It writes the error
// response and returns false when the caller is unknown or has no valid role.
func (b base) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return models.Actor{}, false
	}
	a, err := models.NewActor(p.ID, p.Name, p.Role)
	if err != nil {
		httpx.JSONErrorDetails(w, http.StatusForbidden, domain.ErrForbidden.Error(), err.Error())
		return models.Actor{}, false
	}
	return a, true
}

// parseID reads a contract id from s.
func parseID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fmt.Errorf("%w: contract id is required", domain.ErrInvalidContract)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed contract id %q", domain.ErrInvalidContract, s)
	}
	return id, nil
}
