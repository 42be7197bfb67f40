package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/services/user/application/handlers"
	appsvcs "github.com/ghuser/contractflow/services/user/application/services"
)

// UserRoutes registers user endpoints on the provided chi router.
func UserRoutes(r chi.Router, a *app.Application) (*appsvcs.Services, error) {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return nil, err
	}
	production := a.Config != nil && a.Config.Environment == config.EnvProduction
	Routes(r, svcs, a.Logger, production)
	return svcs, nil
}

// Routes mounts the user handlers over svcs.
func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger, production bool) {
	r.Post("/create-user", handlers.NewCreateUserHandler(svcs, log, production).Execute)
}
