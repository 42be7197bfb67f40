package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Contract mirrors a row of the contracts table. JSONB columns are raw bytes.
type Contract struct {
	ID                     uuid.UUID
	CodiceUnivocoOfferta   string
	DataCreazione          time.Time
	CreatoDaID             string
	CreatoDa               []byte
	Contatto               []byte
	IsBusiness             bool
	RagioneSociale         string
	StatoOfferta           string
	NoteStatoOfferta       string
	CronologiaStati        []byte
	LockHolderID           sql.NullString
	LockHolder             []byte
	LockAcquiredAt         sql.NullTime
	Documenti              []byte
	Offerte                []byte
	Pod                    []byte
	Pdr                    []byte
	Gestore                string
	TipologiaContratto     string
	MasterReference        []byte
	NuoviPodAggiunti       bool
	DataUltimaIntegrazione sql.NullTime
	Version                int32
	UpdatedAt              time.Time
}
