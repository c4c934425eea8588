package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// BalanceAuditRepository implements usecase.BalanceAuditRepository.
type BalanceAuditRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceAuditRepository creates a new BalanceAuditRepository.
func NewBalanceAuditRepository(pool *pgxpool.Pool) *BalanceAuditRepository {
	return &BalanceAuditRepository{pool: pool}
}

// Create appends a balance audit row within a database transaction.
func (r *BalanceAuditRepository) Create(ctx context.Context, tx usecase.Transaction, audit *domain.BalanceAudit) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO balance_audit (id, account_id, delta, resulting_balance, reason, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, query,
		audit.ID,
		audit.AccountID,
		decimalToNumeric(audit.Delta),
		decimalToNumeric(audit.ResultingBalance),
		audit.Reason,
		audit.TransactionID,
		timeToPgTimestamptz(audit.CreatedAt),
	)

	return err
}

// SumLedgerDeltas totals deltas applied to an account in (after, until],
// excluding closing-correction rows. It runs inside the caller's transaction
// so the sum is consistent with the locks already held.
func (r *BalanceAuditRepository) SumLedgerDeltas(ctx context.Context, tx usecase.Transaction, accountID string, after, until time.Time) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM balance_audit
		WHERE account_id = $1
		  AND reason <> $2
		  AND created_at > $3
		  AND created_at <= $4
	`

	var total pgtype.Numeric
	err := pgxTx.QueryRow(ctx, query,
		accountID,
		domain.ReasonClosingCorrection,
		timeToPgTimestamptz(after),
		timeToPgTimestamptz(until),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// SumAllDeltas totals every delta ever applied to an account, corrections included.
func (r *BalanceAuditRepository) SumAllDeltas(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM balance_audit
		WHERE account_id = $1
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// ListByAccount lists balance audit rows for an account, newest first.
func (r *BalanceAuditRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceAudit, error) {
	query := `
		SELECT id, account_id, delta, resulting_balance, reason, transaction_id, created_at
		FROM balance_audit
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*domain.BalanceAudit
	for rows.Next() {
		audit, err := scanBalanceAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}

	return audits, rows.Err()
}

func scanBalanceAudit(row pgx.Row) (*domain.BalanceAudit, error) {
	var (
		audit     domain.BalanceAudit
		delta     pgtype.Numeric
		resulting pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&audit.ID,
		&audit.AccountID,
		&delta,
		&resulting,
		&audit.Reason,
		&audit.TransactionID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	audit.Delta = numericToDecimal(delta)
	audit.ResultingBalance = numericToDecimal(resulting)
	audit.CreatedAt = createdAt.Time

	return &audit, nil
}
