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

const transactionColumns = `id, type, business_date, created_at, amount, fee_percent, net_amount,
	source_account_id, destination_account_id, method, card_brand, installments,
	user_id, status, reversal_of`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a transaction within a database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.Type,
		timeToPgDate(txn.BusinessDate),
		timeToPgTimestamptz(txn.CreatedAt),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.FeePercent),
		decimalToNumeric(txn.NetAmount),
		txn.SourceAccountID,
		txn.DestinationAccountID,
		txn.Method,
		txn.CardBrand,
		txn.Installments,
		txn.UserID,
		txn.Status,
		txn.ReversalOf,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	txn, err := scanTransaction(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

// UpdateStatus updates the status of a transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE transactions SET status = $2 WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// SumConfirmedEntriesByUser totals gross amounts of confirmed entry
// transactions posted by a user over [from, to).
func (r *TransactionRepository) SumConfirmedEntriesByUser(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		  AND type = $2
		  AND status = $3
		  AND business_date >= $4
		  AND business_date < $5
	`

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, query,
		userID,
		domain.TypeEntry,
		domain.StatusConfirmed,
		timeToPgDate(from),
		timeToPgDate(to),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// ListByAccount lists transactions touching an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryTransactions(ctx, query, accountID, limit, offset)
}

// ListByBusinessDate lists transactions for a business date, oldest first.
func (r *TransactionRepository) ListByBusinessDate(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE business_date = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	return r.queryTransactions(ctx, query, timeToPgDate(date), limit, offset)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn          domain.Transaction
		businessDate pgtype.Date
		createdAt    pgtype.Timestamptz
		amount       pgtype.Numeric
		feePercent   pgtype.Numeric
		netAmount    pgtype.Numeric
	)

	err := row.Scan(
		&txn.ID,
		&txn.Type,
		&businessDate,
		&createdAt,
		&amount,
		&feePercent,
		&netAmount,
		&txn.SourceAccountID,
		&txn.DestinationAccountID,
		&txn.Method,
		&txn.CardBrand,
		&txn.Installments,
		&txn.UserID,
		&txn.Status,
		&txn.ReversalOf,
	)
	if err != nil {
		return nil, err
	}

	txn.BusinessDate = businessDate.Time
	txn.CreatedAt = createdAt.Time
	txn.Amount = numericToDecimal(amount)
	txn.FeePercent = numericToDecimal(feePercent)
	txn.NetAmount = numericToDecimal(netAmount)

	return &txn, nil
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
