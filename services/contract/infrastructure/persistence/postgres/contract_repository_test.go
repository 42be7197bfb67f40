package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/database"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/pkg/migrator"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
	"github.com/ghuser/contractflow/services/contract/infrastructure/persistence/postgres"
)

// Integration tests are skipped unless DEFINITION_DATABASE_URL is set.
func newRepo(t *testing.T) *postgres.ContractRepository {
	t.Helper()
	url := os.Getenv("DEFINITION_DATABASE_URL")
	if url == "" {
		t.Skip("DEFINITION_DATABASE_URL not set; skipping integration tests")
	}
	if err := migrator.RunMigrations(url, os.DirFS("../../../../../migrations/contract"), migrator.WithVersionTable("goose_contract_version")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logger.New(&config.Config{LogLevel: "error"})
	db, err := database.NewPool(context.Background(), url, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	return postgres.NewContractRepository(db, nil)
}

func seed(t *testing.T, repo *postgres.ContractRepository, now time.Time) *models.Contract {
	t.Helper()
	c, err := models.NewContract(models.NewContractInput{
		Contact: models.Contact{FirstName: "Mario", LastName: "Rossi"},
	}, models.Actor{ID: "u-cons", Name: "Carla", Role: models.RoleConsultant}, now)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	c.Code = c.Code + "-" + c.ID.String()[:8]
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("save: %v", err)
	}
	return c
}

func TestContractRepositoryIntegration(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	bo1 := models.Actor{ID: "u-bo1", Name: "Bruno", Role: models.RoleBackOffice}
	bo2 := models.Actor{ID: "u-bo2", Name: "Bianca", Role: models.RoleBackOffice}

	t.Run("save and get", func(t *testing.T) {
		c := seed(t, repo, now)
		got, err := repo.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Code != c.Code || got.Status != models.StatusLoaded || len(got.History) != 0 {
			t.Fatalf("unexpected contract: %+v", got)
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		c := seed(t, repo, now)
		dup := *c
		dup.ID = uuid.New()
		if err := repo.Save(ctx, &dup); !errors.Is(err, domain.ErrContractAlreadyExists) {
			t.Fatalf("expected ErrContractAlreadyExists, got %v", err)
		}
	})

	t.Run("lock is exclusive", func(t *testing.T) {
		c := seed(t, repo, now)
		expiredBefore := now.Add(-30 * time.Minute)
		if _, err := repo.AcquireLock(ctx, c.ID, models.Lock{Holder: bo1, AcquiredAt: now}, models.StatusLoaded, expiredBefore); err != nil {
			t.Fatalf("first acquire: %v", err)
		}
		if _, err := repo.AcquireLock(ctx, c.ID, models.Lock{Holder: bo2, AcquiredAt: now}, models.StatusInProgress, expiredBefore); !errors.Is(err, domain.ErrAlreadyLocked) {
			t.Fatalf("expected ErrAlreadyLocked, got %v", err)
		}
		got, err := repo.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Lock == nil || got.Lock.Holder.ID != bo1.ID || got.Status != models.StatusInProgress {
			t.Fatalf("unexpected lock state: %+v status=%s", got.Lock, got.Status)
		}
	})

	t.Run("expired lock is swept", func(t *testing.T) {
		c := seed(t, repo, now)
		old := now.Add(-time.Hour)
		if _, err := repo.AcquireLock(ctx, c.ID, models.Lock{Holder: bo1, AcquiredAt: old}, models.StatusLoaded, old.Add(-30*time.Minute)); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		version, cleared, err := repo.ClearExpiredLock(ctx, c.ID, old, now.Add(-30*time.Minute))
		if err != nil || !cleared {
			t.Fatalf("cleared=%v err=%v", cleared, err)
		}
		got, err := repo.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Version != version {
			t.Fatalf("returned version %d, stored %d", version, got.Version)
		}
		if got.Lock != nil || got.Status != models.StatusLoaded {
			t.Fatalf("unexpected state after sweep: %+v status=%s", got.Lock, got.Status)
		}
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		c := seed(t, repo, now)
		c.StatusNote = "first"
		if err := repo.Update(ctx, c, 1); err != nil {
			t.Fatalf("update: %v", err)
		}
		c.StatusNote = "second"
		if err := repo.Update(ctx, c, 1); !errors.Is(err, domain.ErrConcurrentUpdate) {
			t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
		}
	})

	t.Run("delete writes tombstone", func(t *testing.T) {
		c := seed(t, repo, now)
		err := repo.Delete(ctx, repositories.Tombstone{
			ContractID: c.ID, Code: c.Code, LastStatus: c.Status,
			DeletedBy: models.Actor{ID: "u-admin", Role: models.RoleAdmin}, DeletedAt: now, Snapshot: c,
		})
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, domain.ErrContractNotFound) {
			t.Fatalf("expected ErrContractNotFound, got %v", err)
		}
		if err := repo.Delete(ctx, repositories.Tombstone{ContractID: c.ID, Snapshot: c}); !errors.Is(err, domain.ErrContractNotFound) {
			t.Fatalf("second delete: expected ErrContractNotFound, got %v", err)
		}
	})
}
