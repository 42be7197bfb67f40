package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/pkg/cache"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/telemetry"
	"github.com/ghuser/contractflow/pkg/workflows"
)

// Application holds the shared infrastructure handed to every bounded
// context's services.New and route registration.
//
// Logger is trace-aware: use the context methods in request paths so trace_id,
// span_id, request_id and the actor attributes are attached automatically.
//
//	a.Logger.InfoContext(ctx, "contract locked", "contract_id", id)
//
// TemporalClient is nil when TEMPORAL_ENABLED is false, SessionStore is nil in
// the worker process and BlobStore is nil when the worker does not need files.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	BlobStore      blobstore.Store
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
	Metrics        *telemetry.WorkflowMetrics
}
