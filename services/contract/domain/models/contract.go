package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContractType is the product line of a contract.
type ContractType string

const (
	ContractTypeEnergy   ContractType = "energia"
	ContractTypeTelecoms ContractType = "telefonia"
)

// Contact is the customer's personal and contact data.
type Contact struct {
	FirstName  string `json:"nome"`
	LastName   string `json:"cognome"`
	FiscalCode string `json:"codiceFiscale"`
	Phone      string `json:"telefono,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Lock marks that an operator is actively working a contract. It is active
// only while now - AcquiredAt is shorter than the configured lock duration.
type Lock struct {
	Holder     Actor     `json:"lockedBy"`
	AcquiredAt time.Time `json:"dataLock"`
}

// HistoryEntry records one status transition. Entries are append-only.
type HistoryEntry struct {
	Status     Status    `json:"stato"`
	ChangedAt  time.Time `json:"dataModifica"`
	ChangedBy  Actor     `json:"modificatoDa"`
	Note       string    `json:"note,omitempty"`
	Automated  bool      `json:"automatico,omitempty"`
	Forced     bool      `json:"forzato,omitempty"`
	FromStatus Status    `json:"statoPrecedente,omitempty"`
}

// Document is metadata for an uploaded file; the bytes live in the blob store.
type Document struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"nome"`
	Kind       string    `json:"tipo"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"dimensione"`
	UploadedBy Actor     `json:"caricatoDa"`
	UploadedAt time.Time `json:"dataCaricamento"`
}

// Offer is a commercial offer selected when the contract was created.
type Offer struct {
	ID       string       `json:"id"`
	Name     string       `json:"nome"`
	Provider string       `json:"gestore"`
	Type     ContractType `json:"tipo"`
}

// Contract is the aggregate root of the workflow.
type Contract struct {
	ID                uuid.UUID      `json:"id"`
	Code              string         `json:"codiceUnivocoOfferta"`
	CreatedOn         Date           `json:"dataCreazione"`
	CreatedBy         Actor          `json:"creatoDa"`
	Contact           Contact        `json:"contatto"`
	IsBusiness        bool           `json:"isBusiness"`
	CompanyName       string         `json:"ragioneSociale,omitempty"`
	Status            Status         `json:"statoOfferta"`
	StatusNote        string         `json:"noteStatoOfferta,omitempty"`
	History           []HistoryEntry `json:"cronologiaStati"`
	Lock              *Lock          `json:"lock,omitempty"`
	Documents         []Document     `json:"documenti"`
	Offers            []Offer        `json:"offerte"`
	POD               []string       `json:"pod"`
	PDR               []string       `json:"pdr"`
	Provider          string         `json:"gestore"`
	Type              ContractType   `json:"tipologiaContratto"`
	MasterRef         *Actor         `json:"masterReference,omitempty"`
	NewSupplyPoints   bool           `json:"nuoviPodAggiunti"`
	LastIntegrationAt *time.Time     `json:"dataUltimaIntegrazione,omitempty"`
	Version           int            `json:"version"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// NewContractInput carries the data a consultant submits when saving a contract.
type NewContractInput struct {
	Contact     Contact
	IsBusiness  bool
	CompanyName string
	Offers      []Offer
	POD         []string
	PDR         []string
	MasterRef   *Actor
	Note        string
}

// NewContract builds a contract in status Caricato with an empty history;
// only transitions append to it. Provider and type are derived once from the
// selected offers.
func NewContract(in NewContractInput, creator Actor, now time.Time) (*Contract, error) {
	in.Contact.FirstName = strings.TrimSpace(in.Contact.FirstName)
	in.Contact.LastName = strings.TrimSpace(in.Contact.LastName)
	if in.Contact.FirstName == "" || in.Contact.LastName == "" {
		return nil, fmt.Errorf("customer first and last name are required")
	}
	if in.IsBusiness && strings.TrimSpace(in.CompanyName) == "" {
		return nil, fmt.Errorf("company name is required for business customers")
	}
	if creator.ID == "" {
		return nil, fmt.Errorf("creator is required")
	}

	c := &Contract{
		ID:          uuid.New(),
		Code:        NewContractCode(now),
		CreatedOn:   DateOf(now),
		CreatedBy:   creator,
		Contact:     in.Contact,
		IsBusiness:  in.IsBusiness,
		CompanyName: strings.TrimSpace(in.CompanyName),
		Status:      StatusLoaded,
		StatusNote:  in.Note,
		History:     []HistoryEntry{},
		Documents:   []Document{},
		Offers:      append([]Offer{}, in.Offers...),
		POD:         normalizeCodes(in.POD),
		PDR:         normalizeCodes(in.PDR),
		MasterRef:   in.MasterRef,
		Version:     1,
		UpdatedAt:   now,
	}
	c.Provider, c.Type = deriveProviderAndType(in.Offers)
	return c, nil
}

// NewContractCode returns the public identifier for a contract created at now.
func NewContractCode(now time.Time) string {
	return fmt.Sprintf("CON-%d", now.UnixMilli())
}

func deriveProviderAndType(offers []Offer) (string, ContractType) {
	if len(offers) == 0 {
		return "", ContractTypeEnergy
	}
	first := offers[0]
	t := first.Type
	if t != ContractTypeTelecoms {
		t = ContractTypeEnergy
	}
	return first.Provider, t
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// LastChange returns the most recent history entry, or nil for an empty history.
func (c *Contract) LastChange() *HistoryEntry {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}
