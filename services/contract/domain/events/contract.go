package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// Watermill topics published by the contract context.
const (
	TopicContractCreated  = "contract.created"
	TopicStatusChanged    = "contract.status_changed"
	TopicContractLocked   = "contract.locked"
	TopicContractUnlocked = "contract.unlocked"
	TopicContractDeleted  = "contract.deleted"
	TopicDocumentUploaded = "contract.document_uploaded"
)

const currentEventVersion = 1

// Event is a domain event destined for a Watermill topic.
type Event interface {
	Topic() string
	ID() uuid.UUID
}

// Header carries the fields shared by every contract event.
type Header struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ContractID uuid.UUID `json:"contract_id"`
	Code       string    `json:"code"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newHeader(c *models.Contract, actorID string, at time.Time) Header {
	return Header{
		EventID:    uuid.New(),
		Version:    currentEventVersion,
		ContractID: c.ID,
		Code:       c.Code,
		ActorID:    actorID,
		OccurredAt: at,
	}
}

func (h Header) ID() uuid.UUID { return h.EventID }

// ContractCreatedEvent is published after a new contract is persisted.
type ContractCreatedEvent struct {
	Header
	Provider string `json:"provider"`
	Type     string `json:"type"`
}

func (ContractCreatedEvent) Topic() string { return TopicContractCreated }

func NewContractCreated(c *models.Contract) ContractCreatedEvent {
	return ContractCreatedEvent{
		Header:   newHeader(c, c.CreatedBy.ID, c.UpdatedAt),
		Provider: c.Provider,
		Type:     string(c.Type),
	}
}

// StatusChangedEvent is published for every history entry appended.
type StatusChangedEvent struct {
	Header
	From      string `json:"from"`
	To        string `json:"to"`
	ActorRole string `json:"actor_role,omitempty"`
	Note      string `json:"note,omitempty"`
	Automated bool   `json:"automated"`
	Forced    bool   `json:"forced"`
}

func (StatusChangedEvent) Topic() string { return TopicStatusChanged }

func NewStatusChanged(c *models.Contract, entry models.HistoryEntry) StatusChangedEvent {
	return StatusChangedEvent{
		Header:    newHeader(c, entry.ChangedBy.ID, entry.ChangedAt),
		From:      string(entry.FromStatus),
		To:        string(entry.Status),
		ActorRole: string(entry.ChangedBy.Role),
		Note:      entry.Note,
		Automated: entry.Automated,
		Forced:    entry.Forced,
	}
}

// ContractLockedEvent is published when an operator claims a contract.
type ContractLockedEvent struct {
	Header
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (ContractLockedEvent) Topic() string { return TopicContractLocked }

func NewContractLocked(c *models.Contract, lock models.Lock, expiresAt time.Time) ContractLockedEvent {
	return ContractLockedEvent{
		Header:     newHeader(c, lock.Holder.ID, lock.AcquiredAt),
		AcquiredAt: lock.AcquiredAt,
		ExpiresAt:  expiresAt,
	}
}

// ContractUnlockedEvent is published when a lock is released or swept.
type ContractUnlockedEvent struct {
	Header
	Expired bool `json:"expired"`
}

func (ContractUnlockedEvent) Topic() string { return TopicContractUnlocked }

func NewContractUnlocked(c *models.Contract, actorID string, at time.Time, expired bool) ContractUnlockedEvent {
	return ContractUnlockedEvent{Header: newHeader(c, actorID, at), Expired: expired}
}

// ContractDeletedEvent is published when a contract is removed.
type ContractDeletedEvent struct {
	Header
	LastStatus string `json:"last_status"`
}

func (ContractDeletedEvent) Topic() string { return TopicContractDeleted }

func NewContractDeleted(c *models.Contract, actorID string, at time.Time) ContractDeletedEvent {
	return ContractDeletedEvent{Header: newHeader(c, actorID, at), LastStatus: string(c.Status)}
}

// DocumentUploadedEvent is published after a document is stored and attached.
type DocumentUploadedEvent struct {
	Header
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
}

func (DocumentUploadedEvent) Topic() string { return TopicDocumentUploaded }

func NewDocumentUploaded(c *models.Contract, doc models.Document) DocumentUploadedEvent {
	return DocumentUploadedEvent{
		Header:     newHeader(c, doc.UploadedBy.ID, doc.UploadedAt),
		DocumentID: doc.ID,
		Kind:       doc.Kind,
		MimeType:   doc.MimeType,
		Size:       doc.Size,
	}
}
