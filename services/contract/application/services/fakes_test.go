package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/pkg/cache"
	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

// memRepo is an in-memory ContractRepository with the same conditional
// write semantics as the Postgres one.
type memRepo struct {
	mu         sync.Mutex
	contracts  map[uuid.UUID]*models.Contract
	order      []uuid.UUID
	tombstones []repositories.Tombstone
	published  []events.Event
	// beforeUpdate runs once before the next Update, to simulate a racing writer.
	beforeUpdate func(r *memRepo)
}

func newMemRepo() *memRepo {
	return &memRepo{contracts: map[uuid.UUID]*models.Contract{}}
}

func (r *memRepo) Save(_ context.Context, c *models.Contract, evts ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.contracts {
		if existing.Code == c.Code {
			return domain.ErrContractAlreadyExists
		}
	}
	r.contracts[c.ID] = cloneContract(c)
	r.order = append(r.order, c.ID)
	r.published = append(r.published, evts...)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return cloneContract(c), nil
}

func (r *memRepo) List(_ context.Context, q repositories.ListQuery) ([]*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Contract{}
	for _, id := range r.order {
		c, ok := r.contracts[id]
		if !ok {
			continue
		}
		if q.Status != nil && c.Status != *q.Status {
			continue
		}
		if q.CreatedBy != "" && c.CreatedBy.ID != q.CreatedBy {
			continue
		}
		out = append(out, cloneContract(c))
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, c *models.Contract, expectedVersion int, evts ...events.Event) error {
	if hook := r.takeHook(); hook != nil {
		hook(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contracts[c.ID]
	if !ok {
		return domain.ErrContractNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConcurrentUpdate
	}
	c.Version = expectedVersion + 1
	r.contracts[c.ID] = cloneContract(c)
	r.published = append(r.published, evts...)
	return nil
}

func (r *memRepo) takeHook() func(*memRepo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.beforeUpdate
	r.beforeUpdate = nil
	return h
}

func (r *memRepo) AcquireLock(_ context.Context, id uuid.UUID, lock models.Lock, observed models.Status, expiredBefore time.Time, evts ...events.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return 0, domain.ErrContractNotFound
	}
	free := c.Lock == nil || !c.Lock.AcquiredAt.After(expiredBefore) || c.Lock.Holder.ID == lock.Holder.ID
	if c.Status != observed || !free {
		return 0, domain.ErrAlreadyLocked
	}
	l := lock
	c.Lock = &l
	c.Status = models.StatusInProgress
	c.UpdatedAt = lock.AcquiredAt
	c.Version++
	r.published = append(r.published, evts...)
	return c.Version, nil
}

func (r *memRepo) ClearExpiredLock(_ context.Context, id uuid.UUID, acquiredAt, expiredBefore time.Time, evts ...events.Event) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.Lock == nil || !c.Lock.AcquiredAt.Equal(acquiredAt) || c.Lock.AcquiredAt.After(expiredBefore) {
		return 0, false, nil
	}
	c.Lock = nil
	if c.Status == models.StatusInProgress {
		c.Status = models.StatusLoaded
	}
	c.Version++
	r.published = append(r.published, evts...)
	return c.Version, true, nil
}

func (r *memRepo) Delete(_ context.Context, t repositories.Tombstone, evts ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[t.ContractID]; !ok {
		return domain.ErrContractNotFound
	}
	delete(r.contracts, t.ContractID)
	r.tombstones = append(r.tombstones, t)
	r.published = append(r.published, evts...)
	return nil
}

func (r *memRepo) Stats(_ context.Context, expiredBefore time.Time) (repositories.StoreStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := repositories.StoreStats{Contracts: len(r.contracts), Deletions: len(r.tombstones)}
	for _, c := range r.contracts {
		if c.Lock != nil && c.Lock.AcquiredAt.After(expiredBefore) {
			st.ActiveLocks++
		}
	}
	return st, nil
}

func (r *memRepo) put(c *models.Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[c.ID] = cloneContract(c)
	r.order = append(r.order, c.ID)
}

func (r *memRepo) stored(t *testing.T, id uuid.UUID) *models.Contract {
	t.Helper()
	c, err := r.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stored contract %s: %v", id, err)
	}
	return c
}

func (r *memRepo) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.published))
	for i, e := range r.published {
		out[i] = e.Topic()
	}
	return out
}

// memCache is a Cache backed by a map, with the same version floor rules
// as the Redis cache.
type memCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]byte
	floors  map[uuid.UUID]int
}

func newMemCache() *memCache {
	return &memCache{entries: map[uuid.UUID][]byte{}, floors: map[uuid.UUID]int{}}
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return b, nil
}

func (c *memCache) Set(_ context.Context, id uuid.UUID, version int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.floors[id] > version {
		return nil
	}
	c.entries[id] = payload
	c.floors[id] = version
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uuid.UUID, version int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.floors[id] = max(c.floors[id], version)
	return nil
}

// memFiles is a blobstore.Store backed by a map.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (f *memFiles) Put(_ context.Context, p string, r io.Reader) (int64, error) {
	if f.failPut != nil {
		return 0, f.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[p] = b
	return int64(len(b)), nil
}

func (f *memFiles) Get(_ context.Context, p string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[p]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *memFiles) List(_ context.Context, dir string) ([]blobstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []blobstore.Object{}
	for p, b := range f.objects {
		if strings.HasPrefix(p, dir+"/") {
			out = append(out, blobstore.Object{Path: p, Size: int64(len(b))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *memFiles) URL(p string) string        { return "https://files.test/" + p }
func (f *memFiles) Ping(context.Context) error { return nil }
func (f *memFiles) Close() error               { return nil }

// recordingScheduler captures scheduled lock expiries.
type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []time.Time
	err       error
}

func (s *recordingScheduler) ScheduleLockExpiry(_ context.Context, _ uuid.UUID, _ models.Lock, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, expiresAt)
	return s.err
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var (
	adminActor      = models.Actor{ID: "u-admin", Name: "Anna Admin", Role: models.RoleAdmin}
	backOfficeA     = models.Actor{ID: "u-bo-a", Name: "Bruno Back", Role: models.RoleBackOffice}
	backOfficeB     = models.Actor{ID: "u-bo-b", Name: "Carla Back", Role: models.RoleBackOffice}
	consultantActor = models.Actor{ID: "u-cons", Name: "Dario Consulente", Role: models.RoleConsultant}
)

type fixture struct {
	svc   *ContractService
	repo  *memRepo
	cache *memCache
	files *memFiles
	sched *recordingScheduler
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  newMemRepo(),
		cache: newMemCache(),
		files: newMemFiles(),
		sched: &recordingScheduler{},
		clock: &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	f.svc = NewContractService(
		f.repo,
		domainsvcs.NewLockManager(30*time.Minute),
		logger.New(&config.Config{LogLevel: "error"}),
		WithCache(f.cache),
		WithBlobStore(f.files),
		WithLockScheduler(f.sched),
		WithUploadLimit(1<<20),
		WithClock(f.clock.Now),
	)
	return f
}

func (f *fixture) create(t *testing.T, lastName string) *models.Contract {
	t.Helper()
	c, err := f.svc.Create(context.Background(), models.NewContractInput{
		Contact: models.Contact{FirstName: "Mario", LastName: lastName, FiscalCode: "RSSMRA80A01H501U"},
		Offers:  []models.Offer{{ID: "o-1", Name: "Luce Casa", Provider: "ENEL", Type: models.ContractTypeEnergy}},
		POD:     []string{"IT001E12345678"},
	}, consultantActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.clock.Advance(time.Millisecond)
	return c
}

func mustErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// cloneContract deep-copies c so the fake store never shares state with callers.
func cloneContract(c *models.Contract) *models.Contract {
	cp := *c
	cp.History = append([]models.HistoryEntry(nil), c.History...)
	cp.Documents = append([]models.Document(nil), c.Documents...)
	cp.Offers = append([]models.Offer(nil), c.Offers...)
	cp.POD = append([]string(nil), c.POD...)
	cp.PDR = append([]string(nil), c.PDR...)
	if c.Lock != nil {
		l := *c.Lock
		cp.Lock = &l
	}
	if c.MasterRef != nil {
		m := *c.MasterRef
		cp.MasterRef = &m
	}
	if c.LastIntegrationAt != nil {
		t := *c.LastIntegrationAt
		cp.LastIntegrationAt = &t
	}
	return &cp
}
