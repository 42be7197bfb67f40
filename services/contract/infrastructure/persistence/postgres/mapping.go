package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ghuser/contractflow/services/contract/domain/models"
	"github.com/ghuser/contractflow/services/contract/infrastructure/persistence/postgres/db"
)

func contractToRow(c *models.Contract) (db.Contract, error) {
	row := db.Contract{
		ID:                   c.ID,
		CodiceUnivocoOfferta: c.Code,
		DataCreazione:        c.CreatedOn.Time(),
		CreatoDaID:           c.CreatedBy.ID,
		IsBusiness:           c.IsBusiness,
		RagioneSociale:       c.CompanyName,
		StatoOfferta:         string(c.Status),
		NoteStatoOfferta:     c.StatusNote,
		Gestore:              c.Provider,
		TipologiaContratto:   string(c.Type),
		NuoviPodAggiunti:     c.NewSupplyPoints,
		Version:              int32(c.Version),
		UpdatedAt:            c.UpdatedAt,
	}

	fields := []struct {
		dst *[]byte
		src any
	}{
		{&row.CreatoDa, c.CreatedBy},
		{&row.Contatto, c.Contact},
		{&row.CronologiaStati, nonNil(c.History)},
		{&row.Documenti, nonNil(c.Documents)},
		{&row.Offerte, nonNil(c.Offers)},
		{&row.Pod, nonNil(c.POD)},
		{&row.Pdr, nonNil(c.PDR)},
	}
	for _, f := range fields {
		b, err := json.Marshal(f.src)
		if err != nil {
			return db.Contract{}, fmt.Errorf("marshal contract column: %w", err)
		}
		*f.dst = b
	}

	if c.Lock != nil {
		b, err := json.Marshal(c.Lock.Holder)
		if err != nil {
			return db.Contract{}, fmt.Errorf("marshal lock holder: %w", err)
		}
		row.LockHolder = b
		row.LockHolderID = sql.NullString{String: c.Lock.Holder.ID, Valid: true}
		row.LockAcquiredAt = sql.NullTime{Time: c.Lock.AcquiredAt, Valid: true}
	}
	if c.MasterRef != nil {
		b, err := json.Marshal(c.MasterRef)
		if err != nil {
			return db.Contract{}, fmt.Errorf("marshal master reference: %w", err)
		}
		row.MasterReference = b
	}
	if c.LastIntegrationAt != nil {
		row.DataUltimaIntegrazione = sql.NullTime{Time: *c.LastIntegrationAt, Valid: true}
	}
	return row, nil
}

func rowToContract(row db.Contract) (*models.Contract, error) {
	c := &models.Contract{
		ID:              row.ID,
		Code:            row.CodiceUnivocoOfferta,
		CreatedOn:       models.DateOf(row.DataCreazione.UTC()),
		IsBusiness:      row.IsBusiness,
		CompanyName:     row.RagioneSociale,
		Status:          models.Status(row.StatoOfferta),
		StatusNote:      row.NoteStatoOfferta,
		Provider:        row.Gestore,
		Type:            models.ContractType(row.TipologiaContratto),
		NewSupplyPoints: row.NuoviPodAggiunti,
		Version:         int(row.Version),
		UpdatedAt:       row.UpdatedAt,
	}

	fields := []struct {
		src []byte
		dst any
	}{
		{row.CreatoDa, &c.CreatedBy},
		{row.Contatto, &c.Contact},
		{row.CronologiaStati, &c.History},
		{row.Documenti, &c.Documents},
		{row.Offerte, &c.Offers},
		{row.Pod, &c.POD},
		{row.Pdr, &c.PDR},
	}
	for _, f := range fields {
		if len(f.src) == 0 {
			continue
		}
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, fmt.Errorf("decode contract %s: %w", row.ID, err)
		}
	}

	if row.LockHolderID.Valid && row.LockAcquiredAt.Valid {
		lock := &models.Lock{AcquiredAt: row.LockAcquiredAt.Time}
		if len(row.LockHolder) > 0 {
			if err := json.Unmarshal(row.LockHolder, &lock.Holder); err != nil {
				return nil, fmt.Errorf("decode lock holder %s: %w", row.ID, err)
			}
		}
		lock.Holder.ID = row.LockHolderID.String
		c.Lock = lock
	}
	if len(row.MasterReference) > 0 {
		var m models.Actor
		if err := json.Unmarshal(row.MasterReference, &m); err != nil {
			return nil, fmt.Errorf("decode master reference %s: %w", row.ID, err)
		}
		c.MasterRef = &m
	}
	if row.DataUltimaIntegrazione.Valid {
		t := row.DataUltimaIntegrazione.Time
		c.LastIntegrationAt = &t
	}
	return c, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
