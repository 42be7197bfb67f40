package api

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
)

// memRepo is an in-memory ContractRepository.
type memRepo struct {
	mu         sync.Mutex
	contracts  map[uuid.UUID]*models.Contract
	order      []uuid.UUID
	tombstones int
}

func newMemRepo() *memRepo {
	return &memRepo{contracts: map[uuid.UUID]*models.Contract{}}
}

func (r *memRepo) Save(_ context.Context, c *models.Contract, _ ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.contracts {
		if existing.Code == c.Code {
			return domain.ErrContractAlreadyExists
		}
	}
	r.contracts[c.ID] = cloneContract(c)
	r.order = append(r.order, c.ID)
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

func (r *memRepo) Update(_ context.Context, c *models.Contract, expectedVersion int, _ ...events.Event) error {
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
	return nil
}

func (r *memRepo) AcquireLock(_ context.Context, id uuid.UUID, lock models.Lock, observed models.Status, expiredBefore time.Time, _ ...events.Event) (int, error) {
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
	return c.Version, nil
}

func (r *memRepo) ClearExpiredLock(_ context.Context, id uuid.UUID, acquiredAt, expiredBefore time.Time, _ ...events.Event) (int, bool, error) {
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
	return c.Version, true, nil
}

func (r *memRepo) Delete(_ context.Context, t repositories.Tombstone, _ ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[t.ContractID]; !ok {
		return domain.ErrContractNotFound
	}
	delete(r.contracts, t.ContractID)
	r.tombstones++
	return nil
}

func (r *memRepo) Stats(_ context.Context, expiredBefore time.Time) (repositories.StoreStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := repositories.StoreStats{Contracts: len(r.contracts), Deletions: r.tombstones}
	for _, c := range r.contracts {
		if c.Lock != nil && c.Lock.AcquiredAt.After(expiredBefore) {
			st.ActiveLocks++
		}
	}
	return st, nil
}

// setStatus overwrites the stored status, bypassing the workflow.
func (r *memRepo) setStatus(id uuid.UUID, s models.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[id].Status = s
}

// memFiles is a blobstore.Store backed by a map.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (f *memFiles) Put(_ context.Context, p string, r io.Reader) (int64, error) {
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
