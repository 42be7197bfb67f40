package services

import (
	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/cache"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
	"github.com/ghuser/contractflow/services/contract/infrastructure/persistence/postgres"
	"github.com/ghuser/contractflow/services/contract/infrastructure/workflows"
)

// Services is the application-layer service container for the contract
// bounded context.
type Services struct {
	Contract *ContractService
}

// New wires the contract services with infrastructure from the Application
// container. Optional pieces (cache, file store, Temporal) are skipped when
// the container does not provide them.
func New(a *app.Application) *Services {
	repo := postgres.NewContractRepository(a.Db, a.EventBus)

	opts := []Option{
		WithMetrics(a.Metrics),
		WithBlobStore(a.BlobStore),
	}
	if a.Redis != nil {
		opts = append(opts, WithCache(cache.NewContractCache(a.Redis)))
	}
	if a.TemporalClient != nil {
		opts = append(opts, WithLockScheduler(workflows.NewScheduler(a.TemporalClient)))
	}

	var locks *domainsvcs.LockManager
	if a.Config != nil {
		locks = domainsvcs.NewLockManager(a.Config.LockDuration)
		opts = append(opts, WithUploadLimit(a.Config.UploadMaxBytes))
	} else {
		locks = domainsvcs.NewLockManager(domainsvcs.DefaultLockDuration)
	}

	return &Services{
		Contract: NewContractService(repo, locks, a.Logger, opts...),
	}
}
