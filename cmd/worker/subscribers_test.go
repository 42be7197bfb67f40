package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/logger"
	contractevents "github.com/ghuser/contractflow/services/contract/domain/events"
	userevents "github.com/ghuser/contractflow/services/user/domain/events"
)

type recordingCache struct {
	mu      sync.Mutex
	deleted []uuid.UUID
	err     error
}

func (c *recordingCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return c.err
}

func testLogger() logger.Logger { return logger.New(&config.Config{LogLevel: "error"}) }

func TestSubscriberHandlers_CoverTopics(t *testing.T) {
	handlers := subscriberHandlers(&recordingCache{}, testLogger())
	for _, topic := range append(contractTopics, userevents.TopicUserCreated) {
		if handlers[topic] == nil {
			t.Fatalf("no handler for %s", topic)
		}
	}
}

func TestInvalidateContract(t *testing.T) {
	id := uuid.New()
	c := &recordingCache{}
	h := invalidateContract(c, testLogger())

	msg, err := events.NewMessage(uuid.NewString(), contractevents.ContractUnlockedEvent{
		Header: contractevents.Header{EventID: uuid.New(), ContractID: id},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if err := h(context.Background(), msg); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(c.deleted) != 1 || c.deleted[0] != id {
		t.Fatalf("expected %s invalidated, got %v", id, c.deleted)
	}

	c.err = errors.New("redis down")
	if err := h(context.Background(), msg); err == nil {
		t.Fatal("expected cache failure to be returned for retry")
	}

	empty, _ := events.NewMessage(uuid.NewString(), map[string]string{"foo": "bar"})
	if err := h(context.Background(), empty); err == nil {
		t.Fatal("expected error for event without contract id")
	}
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) SweepExpiredLocks(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 0, nil
}

func TestRunLockSweeper_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLockSweeper(ctx, &countingSweeper{}, testLogger())
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
