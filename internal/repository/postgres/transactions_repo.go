package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

type txnRow struct {
	id        string
	streamID  string
	status    string
	version   int64
	createdBy string
	createdAt time.Time
	updatedBy string
	updatedAt time.Time
}

func (r *transactionsRepo) Create(ctx context.Context, txn domain.FinancialTransaction) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO transactions (id, stream_id, status, version, created_by, created_at, updated_by, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			txn.ID(), txn.StreamID().String(), txn.Status().String(), txn.Version().Int64(),
			txn.CreatedBy(), txn.CreatedAt(), txn.UpdatedBy(), txn.UpdatedAt(),
		)
		if err != nil {
			return err
		}
		return insertRecords(ctx, tx, txn)
	})
}

func (r *transactionsRepo) Load(ctx context.Context, id string) (domain.FinancialTransaction, error) {
	var row txnRow
	err := r.pool.QueryRow(ctx, `
SELECT id, stream_id, status, version, created_by, created_at, updated_by, updated_at
  FROM transactions
 WHERE id=$1`, id,
	).Scan(&row.id, &row.streamID, &row.status, &row.version,
		&row.createdBy, &row.createdAt, &row.updatedBy, &row.updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FinancialTransaction{}, domain.NotFoundError(id)
	}
	if err != nil {
		return domain.FinancialTransaction{}, err
	}
	records, err := r.loadRecords(ctx, id)
	if err != nil {
		return domain.FinancialTransaction{}, err
	}
	return rehydrate(row, records)
}

func (r *transactionsRepo) LoadByStream(ctx context.Context, streamID domain.StreamID) ([]domain.FinancialTransaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id FROM transactions WHERE stream_id=$1 ORDER BY id`, streamID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.FinancialTransaction, 0, len(ids))
	for _, id := range ids {
		txn, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}

// Save persists a new snapshot only if the stored version still equals
// expectedVersion. The status/version update and the record replacement run
// in one serializable transaction, so a lost race can never leave a snapshot
// half applied.
func (r *transactionsRepo) Save(ctx context.Context, txn domain.FinancialTransaction, expectedVersion domain.Version) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE transactions
   SET status=$2, version=$3, updated_by=$4, updated_at=$5
 WHERE id=$1 AND version=$6`,
			txn.ID(), txn.Status().String(), txn.Version().Int64(),
			txn.UpdatedBy(), txn.UpdatedAt(), expectedVersion.Int64(),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM transactions WHERE id=$1)`, txn.ID(),
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.NotFoundError(txn.ID())
			}
			return domain.VersionConflictError(txn.ID(), expectedVersion)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM transaction_records WHERE transaction_id=$1`, txn.ID()); err != nil {
			return err
		}
		return insertRecords(ctx, tx, txn)
	})
}

func (r *transactionsRepo) loadRecords(ctx context.Context, txnID string) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
SELECT record_id, stream_id, data, status, created_by, created_at, updated_by, updated_at
  FROM transaction_records
 WHERE transaction_id=$1`, txnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			recordID, streamID, data, status string
			createdBy, updatedBy             string
			createdAt, updatedAt             time.Time
		)
		if err := rows.Scan(&recordID, &streamID, &data, &status,
			&createdBy, &createdAt, &updatedBy, &updatedAt); err != nil {
			return nil, err
		}
		rec, err := domain.RehydrateRecord(recordID, domain.StreamID(streamID), data,
			domain.Status(status), createdBy, createdAt, updatedBy, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("rehydrate record %s: %w", recordID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func insertRecords(ctx context.Context, tx pgx.Tx, txn domain.FinancialTransaction) error {
	batch := &pgx.Batch{}
	for _, rec := range txn.Records() {
		batch.Queue(`
INSERT INTO transaction_records (record_id, transaction_id, stream_id, data, status, created_by, created_at, updated_by, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			rec.ID(), txn.ID(), rec.StreamID().String(), rec.Data(), rec.Status().String(),
			rec.CreatedBy(), rec.CreatedAt(), rec.UpdatedBy(), rec.UpdatedAt(),
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}

func rehydrate(row txnRow, records []domain.Record) (domain.FinancialTransaction, error) {
	version, err := domain.NewVersion(row.version)
	if err != nil {
		return domain.FinancialTransaction{}, fmt.Errorf("transaction %s: %w", row.id, err)
	}
	return domain.Rehydrate(row.id, domain.StreamID(row.streamID), domain.Status(row.status),
		version, records, row.createdBy, row.createdAt, row.updatedBy, row.updatedAt)
}

// withTx runs fn inside one serializable DB transaction.
func (r *transactionsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
