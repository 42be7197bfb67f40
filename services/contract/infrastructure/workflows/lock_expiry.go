// Package workflows holds the Temporal workflow that clears contract locks
// once they expire, so a stale claim does not linger until the next write.
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	pkgworkflows "github.com/ghuser/contractflow/pkg/workflows"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// expiryGrace absorbs clock skew between the Temporal server and the database.
const expiryGrace = 5 * time.Second

// LockExpiryInput identifies one lock by its contract and acquisition time.
type LockExpiryInput struct {
	ContractID string    `json:"contract_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LockExpiryWorkflow sleeps until the lock expires, then clears it if it is
// still the same lock. A refreshed or released lock is left alone.
func LockExpiryWorkflow(ctx workflow.Context, in LockExpiryInput) (bool, error) {
	if d := in.ExpiresAt.Add(expiryGrace).Sub(workflow.Now(ctx)); d > 0 {
		if err := workflow.Sleep(ctx, d); err != nil {
			return false, err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	})

	var a *Activities
	var cleared bool
	if err := workflow.ExecuteActivity(ctx, a.ReleaseExpiredLock, in).Get(ctx, &cleared); err != nil {
		return false, err
	}
	return cleared, nil
}

// LockReleaser is implemented by the contract service.
type LockReleaser interface {
	ReleaseExpiredLock(ctx context.Context, id uuid.UUID, acquiredAt time.Time) (bool, error)
}

// Activities are the side effects LockExpiryWorkflow performs.
type Activities struct {
	Releaser LockReleaser
}

func (a *Activities) ReleaseExpiredLock(ctx context.Context, in LockExpiryInput) (bool, error) {
	id, err := uuid.Parse(in.ContractID)
	if err != nil {
		return false, temporal.NewNonRetryableApplicationError("invalid contract id", "InvalidInput", err)
	}
	return a.Releaser.ReleaseExpiredLock(ctx, id, in.AcquiredAt)
}

// Register adds the lock expiry workflow and its activities to w.
func Register(w worker.Registry, releaser LockReleaser) {
	w.RegisterWorkflow(LockExpiryWorkflow)
	w.RegisterActivity(&Activities{Releaser: releaser})
}

// Scheduler starts one LockExpiryWorkflow per contract. Scheduling a new
// lock for the same contract replaces the pending workflow.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

func NewScheduler(tc *pkgworkflows.TemporalClient) *Scheduler {
	return &Scheduler{client: tc.Client, taskQueue: tc.TaskQueue}
}

// WorkflowID is the id of the expiry workflow for a contract.
func WorkflowID(contractID uuid.UUID) string {
	return "contract-lock-expiry-" + contractID.String()
}

func (s *Scheduler) ScheduleLockExpiry(ctx context.Context, contractID uuid.UUID, lock models.Lock, expiresAt time.Time) error {
	_, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       WorkflowID(contractID),
		TaskQueue:                s.taskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, LockExpiryWorkflow, LockExpiryInput{
		ContractID: contractID.String(),
		AcquiredAt: lock.AcquiredAt,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return fmt.Errorf("start lock expiry workflow: %w", err)
	}
	return nil
}
