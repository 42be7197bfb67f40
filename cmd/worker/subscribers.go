package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/pkg/events"
	"github.com/ghuser/contractflow/pkg/logger"
	contractevents "github.com/ghuser/contractflow/services/contract/domain/events"
	userevents "github.com/ghuser/contractflow/services/user/domain/events"
)

// contractCache is the cache the worker invalidates on contract events.
type contractCache interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// contractTopics change a contract's cached read model.
var contractTopics = []string{
	contractevents.TopicStatusChanged,
	contractevents.TopicContractLocked,
	contractevents.TopicContractUnlocked,
	contractevents.TopicContractDeleted,
	contractevents.TopicDocumentUploaded,
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application, c contractCache) error {
	handlers := subscriberHandlers(c, a.Logger)
	errCh, err := a.EventBus.SubscribeAll(ctx, handlers)
	if err != nil {
		return err
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error", "error", err)
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", slices.Sorted(maps.Keys(handlers)))
	return nil
}

func subscriberHandlers(c contractCache, log logger.Logger) map[string]events.Handler {
	handlers := make(map[string]events.Handler, len(contractTopics)+1)
	invalidate := invalidateContract(c, log)
	for _, topic := range contractTopics {
		handlers[topic] = invalidate
	}
	handlers[userevents.TopicUserCreated] = logUserCreated(log)
	return handlers
}

// invalidateContract drops the cached copy of the contract named in the
// event. Deleting a missing key succeeds, so redelivery is harmless.
func invalidateContract(c contractCache, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var hdr contractevents.Header
		if err := events.Decode(msg, &hdr); err != nil {
			return err
		}
		if hdr.ContractID == uuid.Nil {
			return fmt.Errorf("event %s has no contract id", msg.UUID)
		}
		if err := c.Delete(ctx, hdr.ContractID); err != nil {
			return fmt.Errorf("invalidate contract %s: %w", hdr.ContractID, err)
		}
		log.DebugContext(ctx, "contract cache invalidated", "contract_id", hdr.ContractID)
		return nil
	}
}

func logUserCreated(log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt userevents.UserCreatedEvent
		if err := events.Decode(msg, &evt); err != nil {
			return err
		}
		log.InfoContext(ctx, "user created", "user_id", evt.UserID, "role", evt.Role, "created_by", evt.CreatedBy)
		return nil
	}
}
