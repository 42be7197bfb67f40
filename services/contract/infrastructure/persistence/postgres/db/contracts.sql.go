package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const contractColumns = `id, codice_univoco_offerta, data_creazione, creato_da_id, creato_da, contatto,
	is_business, ragione_sociale, stato_offerta, note_stato_offerta, cronologia_stati,
	lock_holder_id, lock_holder, lock_acquired_at, documenti, offerte, pod, pdr, gestore,
	tipologia_contratto, master_reference, nuovi_pod_aggiunti, data_ultima_integrazione,
	version, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanContract(s scanner) (Contract, error) {
	var c Contract
	err := s.Scan(
		&c.ID,
		&c.CodiceUnivocoOfferta,
		&c.DataCreazione,
		&c.CreatoDaID,
		&c.CreatoDa,
		&c.Contatto,
		&c.IsBusiness,
		&c.RagioneSociale,
		&c.StatoOfferta,
		&c.NoteStatoOfferta,
		&c.CronologiaStati,
		&c.LockHolderID,
		&c.LockHolder,
		&c.LockAcquiredAt,
		&c.Documenti,
		&c.Offerte,
		&c.Pod,
		&c.Pdr,
		&c.Gestore,
		&c.TipologiaContratto,
		&c.MasterReference,
		&c.NuoviPodAggiunti,
		&c.DataUltimaIntegrazione,
		&c.Version,
		&c.UpdatedAt,
	)
	return c, err
}

const insertContract = `INSERT INTO contracts (` + contractColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

// InsertContract inserts a full row. JSONB values are passed as strings.
func (q *Queries) InsertContract(ctx context.Context, c Contract) error {
	_, err := q.db.ExecContext(ctx, insertContract,
		c.ID,
		c.CodiceUnivocoOfferta,
		c.DataCreazione,
		c.CreatoDaID,
		string(c.CreatoDa),
		string(c.Contatto),
		c.IsBusiness,
		c.RagioneSociale,
		c.StatoOfferta,
		c.NoteStatoOfferta,
		string(c.CronologiaStati),
		c.LockHolderID,
		nullableJSON(c.LockHolder),
		c.LockAcquiredAt,
		string(c.Documenti),
		string(c.Offerte),
		string(c.Pod),
		string(c.Pdr),
		c.Gestore,
		c.TipologiaContratto,
		nullableJSON(c.MasterReference),
		c.NuoviPodAggiunti,
		c.DataUltimaIntegrazione,
		c.Version,
		c.UpdatedAt,
	)
	return err
}

const getContract = `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

func (q *Queries) GetContract(ctx context.Context, id uuid.UUID) (Contract, error) {
	return scanContract(q.db.QueryRowContext(ctx, getContract, id))
}

const listContracts = `SELECT ` + contractColumns + ` FROM contracts
WHERE ($1::text IS NULL OR stato_offerta = $1)
  AND ($2::text IS NULL OR creato_da_id = $2)
ORDER BY updated_at DESC, id`

type ListContractsParams struct {
	StatoOfferta sql.NullString
	CreatoDaID   sql.NullString
}

func (q *Queries) ListContracts(ctx context.Context, arg ListContractsParams) ([]Contract, error) {
	rows, err := q.db.QueryContext(ctx, listContracts, arg.StatoOfferta, arg.CreatoDaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var items []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateContract = `UPDATE contracts SET
	creato_da = $3,
	contatto = $4,
	is_business = $5,
	ragione_sociale = $6,
	stato_offerta = $7,
	note_stato_offerta = $8,
	cronologia_stati = $9,
	lock_holder_id = $10,
	lock_holder = $11,
	lock_acquired_at = $12,
	documenti = $13,
	offerte = $14,
	pod = $15,
	pdr = $16,
	gestore = $17,
	tipologia_contratto = $18,
	master_reference = $19,
	nuovi_pod_aggiunti = $20,
	data_ultima_integrazione = $21,
	updated_at = $22,
	version = version + 1
WHERE id = $1 AND version = $2`

// UpdateContract overwrites the mutable columns when the stored version
// matches c.Version and returns the number of rows changed.
func (q *Queries) UpdateContract(ctx context.Context, c Contract) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateContract,
		c.ID,
		c.Version,
		string(c.CreatoDa),
		string(c.Contatto),
		c.IsBusiness,
		c.RagioneSociale,
		c.StatoOfferta,
		c.NoteStatoOfferta,
		string(c.CronologiaStati),
		c.LockHolderID,
		nullableJSON(c.LockHolder),
		c.LockAcquiredAt,
		string(c.Documenti),
		string(c.Offerte),
		string(c.Pod),
		string(c.Pdr),
		c.Gestore,
		c.TipologiaContratto,
		nullableJSON(c.MasterReference),
		c.NuoviPodAggiunti,
		c.DataUltimaIntegrazione,
		c.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const acquireLock = `UPDATE contracts SET
	lock_holder_id = $2,
	lock_holder = $3,
	lock_acquired_at = $4,
	stato_offerta = 'In Lavorazione',
	updated_at = $4,
	version = version + 1
WHERE id = $1
  AND stato_offerta = $5
  AND (lock_holder_id IS NULL OR lock_acquired_at <= $6 OR lock_holder_id = $2)
RETURNING version`

type AcquireLockParams struct {
	ID            uuid.UUID
	HolderID      string
	Holder        []byte
	AcquiredAt    time.Time
	ObservedState string
	ExpiredBefore time.Time
}

// AcquireLock claims the row in one conditional statement and returns the
// new version. sql.ErrNoRows means the condition did not hold.
func (q *Queries) AcquireLock(ctx context.Context, arg AcquireLockParams) (int32, error) {
	var version int32
	err := q.db.QueryRowContext(ctx, acquireLock,
		arg.ID,
		arg.HolderID,
		string(arg.Holder),
		arg.AcquiredAt,
		arg.ObservedState,
		arg.ExpiredBefore,
	).Scan(&version)
	return version, err
}

const clearExpiredLock = `UPDATE contracts SET
	lock_holder_id = NULL,
	lock_holder = NULL,
	lock_acquired_at = NULL,
	stato_offerta = CASE WHEN stato_offerta = 'In Lavorazione' THEN 'Caricato' ELSE stato_offerta END,
	updated_at = $4,
	version = version + 1
WHERE id = $1 AND lock_acquired_at = $2 AND lock_acquired_at <= $3
RETURNING version`

type ClearExpiredLockParams struct {
	ID            uuid.UUID
	AcquiredAt    time.Time
	ExpiredBefore time.Time
	Now           time.Time
}

// ClearExpiredLock returns the new version. sql.ErrNoRows means the lock was
// already gone or replaced.
func (q *Queries) ClearExpiredLock(ctx context.Context, arg ClearExpiredLockParams) (int32, error) {
	var version int32
	err := q.db.QueryRowContext(ctx, clearExpiredLock, arg.ID, arg.AcquiredAt, arg.ExpiredBefore, arg.Now).Scan(&version)
	return version, err
}

const deleteContract = `DELETE FROM contracts WHERE id = $1`

func (q *Queries) DeleteContract(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteContract, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertDeletion = `INSERT INTO contract_deletions
	(contract_id, codice_univoco_offerta, last_status, deleted_by_id, deleted_by, deleted_at, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (contract_id) DO NOTHING`

type InsertDeletionParams struct {
	ContractID           uuid.UUID
	CodiceUnivocoOfferta string
	LastStatus           string
	DeletedByID          string
	DeletedBy            []byte
	DeletedAt            time.Time
	Snapshot             []byte
}

func (q *Queries) InsertDeletion(ctx context.Context, arg InsertDeletionParams) error {
	_, err := q.db.ExecContext(ctx, insertDeletion,
		arg.ContractID,
		arg.CodiceUnivocoOfferta,
		arg.LastStatus,
		arg.DeletedByID,
		string(arg.DeletedBy),
		arg.DeletedAt,
		string(arg.Snapshot),
	)
	return err
}

const contractStats = `SELECT
	(SELECT COUNT(*) FROM contracts),
	(SELECT COUNT(*) FROM contracts WHERE lock_acquired_at > $1),
	(SELECT COUNT(*) FROM contract_deletions)`

type ContractStatsRow struct {
	Contracts   int64
	ActiveLocks int64
	Deletions   int64
}

func (q *Queries) ContractStats(ctx context.Context, expiredBefore time.Time) (ContractStatsRow, error) {
	var r ContractStatsRow
	err := q.db.QueryRowContext(ctx, contractStats, expiredBefore).Scan(&r.Contracts, &r.ActiveLocks, &r.Deletions)
	return r, err
}

// nullableJSON maps an empty payload to SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
