package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/services/contract/application/handlers"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
)

// ContractRoutes registers contract endpoints on the provided chi router.
// The router must already resolve the caller with auth.RequireActor.
func ContractRoutes(r chi.Router, a *app.Application) *appsvcs.Services {
	svcs := appsvcs.New(a)
	production := a.Config != nil && a.Config.Environment == config.EnvProduction
	Routes(r, svcs, a.Logger, production)
	return svcs
}

// Routes mounts the contract handlers over svcs.
func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger, production bool) {
	r.Group(func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", handlers.NewListContractsHandler(svcs, log, production).Execute)
			r.Put("/", handlers.NewUpdateContractHandler(svcs, log, production).Execute)
			r.Delete("/", handlers.NewDeleteContractHandler(svcs, log, production).Execute)
			r.Get("/queue", handlers.NewGetQueueHandler(svcs, log, production).Execute)
			r.Get("/{id}", handlers.NewGetContractHandler(svcs, log, production).Execute)
			r.Get("/{id}/files", handlers.NewListFilesHandler(svcs, log, production).Execute)
			r.Get("/{id}/documents/{documentID}", handlers.NewGetDocumentHandler(svcs, log, production).Execute)
		})
		r.Post("/save-contract", handlers.NewSaveContractHandler(svcs, log, production).Execute)
		r.Post("/upload-document", handlers.NewUploadDocumentHandler(svcs, log, production).Execute)
	})
}
