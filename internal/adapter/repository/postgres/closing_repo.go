package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

const closingColumns = `id, account_id, business_date, expected_balance, declared_balance,
	discrepancy, correction_amount, justification, closed_by, approved_by,
	status, cutoff, created_at, finalized_at`

// ClosingRepository implements usecase.ClosingRepository.
type ClosingRepository struct {
	pool *pgxpool.Pool
}

// NewClosingRepository creates a new ClosingRepository.
func NewClosingRepository(pool *pgxpool.Pool) *ClosingRepository {
	return &ClosingRepository{pool: pool}
}

// Create inserts a closing record within a database transaction. The unique
// (account_id, business_date) index backs the one-closing-per-day rule.
func (r *ClosingRepository) Create(ctx context.Context, tx usecase.Transaction, rec *domain.ClosingRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var finalizedAt pgtype.Timestamptz
	if rec.FinalizedAt != nil {
		finalizedAt = timeToPgTimestamptz(*rec.FinalizedAt)
	}

	_, err := pgxTx.Exec(ctx, query,
		rec.ID,
		rec.AccountID,
		timeToPgDate(rec.BusinessDate),
		decimalToNumeric(rec.ExpectedBalance),
		decimalToNumeric(rec.DeclaredBalance),
		decimalToNumeric(rec.Discrepancy),
		decimalToNumeric(rec.CorrectionAmount),
		rec.Justification,
		rec.ClosedBy,
		rec.ApprovedBy,
		rec.Status,
		timeToPgTimestamptz(rec.Cutoff),
		timeToPgTimestamptz(rec.CreatedAt),
		finalizedAt,
	)

	if isUniqueViolation(err) {
		return domain.ErrAlreadyClosed
	}

	return err
}

// GetByID retrieves a closing record by ID.
func (r *ClosingRepository) GetByID(ctx context.Context, id string) (*domain.ClosingRecord, error) {
	query := `SELECT ` + closingColumns + ` FROM closings WHERE id = $1`

	rec, err := scanClosing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClosingNotFound
		}

		return nil, err
	}

	return rec, nil
}

// GetByIDForUpdate retrieves a closing record by ID with a FOR UPDATE lock.
func (r *ClosingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClosingRecord, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + closingColumns + ` FROM closings WHERE id = $1 FOR UPDATE`

	rec, err := scanClosing(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClosingNotFound
		}

		return nil, err
	}

	return rec, nil
}

// GetByAccountAndDate retrieves the closing record for one account and business date.
func (r *ClosingRepository) GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (*domain.ClosingRecord, error) {
	query := `SELECT ` + closingColumns + ` FROM closings WHERE account_id = $1 AND business_date = $2`

	rec, err := scanClosing(r.pool.QueryRow(ctx, query, accountID, timeToPgDate(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClosingNotFound
		}

		return nil, err
	}

	return rec, nil
}

// GetLatest retrieves the most recent closing record for an account by
// business date, regardless of status. Runs inside the caller's transaction
// so the chain check sees a consistent head.
func (r *ClosingRepository) GetLatest(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.ClosingRecord, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + closingColumns + `
		FROM closings
		WHERE account_id = $1
		ORDER BY business_date DESC
		LIMIT 1
	`

	rec, err := scanClosing(pgxTx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClosingNotFound
		}

		return nil, err
	}

	return rec, nil
}

// Finalize transitions a closing record to FINALIZED with its correction.
func (r *ClosingRepository) Finalize(ctx context.Context, tx usecase.Transaction, id string, approvedBy string, correction decimal.Decimal, justification string, finalizedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE closings
		SET status = $2, approved_by = $3, correction_amount = $4, justification = $5, finalized_at = $6
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		id,
		domain.ClosingFinalized,
		approvedBy,
		decimalToNumeric(correction),
		justification,
		timeToPgTimestamptz(finalizedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClosingNotFound
	}

	return nil
}

// ListByAccount lists closing records for an account, newest business date first.
func (r *ClosingRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error) {
	query := `
		SELECT ` + closingColumns + `
		FROM closings
		WHERE account_id = $1
		ORDER BY business_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.ClosingRecord
	for rows.Next() {
		rec, err := scanClosing(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

func scanClosing(row pgx.Row) (*domain.ClosingRecord, error) {
	var (
		rec          domain.ClosingRecord
		businessDate pgtype.Date
		expected     pgtype.Numeric
		declared     pgtype.Numeric
		discrepancy  pgtype.Numeric
		correction   pgtype.Numeric
		cutoff       pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		finalizedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&businessDate,
		&expected,
		&declared,
		&discrepancy,
		&correction,
		&rec.Justification,
		&rec.ClosedBy,
		&rec.ApprovedBy,
		&rec.Status,
		&cutoff,
		&createdAt,
		&finalizedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.BusinessDate = businessDate.Time
	rec.ExpectedBalance = numericToDecimal(expected)
	rec.DeclaredBalance = numericToDecimal(declared)
	rec.Discrepancy = numericToDecimal(discrepancy)
	rec.CorrectionAmount = numericToDecimal(correction)
	rec.Cutoff = cutoff.Time
	rec.CreatedAt = createdAt.Time
	if finalizedAt.Valid {
		t := finalizedAt.Time
		rec.FinalizedAt = &t
	}

	return &rec, nil
}
