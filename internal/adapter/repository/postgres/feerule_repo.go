package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdash/flowdash/internal/domain"
)

const feeRuleColumns = `id, method, card_brand, min_installments, max_installments,
	fee_percent, settlement_delay_days, registered_at`

// FeeRuleRepository implements usecase.FeeRuleRepository.
type FeeRuleRepository struct {
	pool *pgxpool.Pool
}

// NewFeeRuleRepository creates a new FeeRuleRepository.
func NewFeeRuleRepository(pool *pgxpool.Pool) *FeeRuleRepository {
	return &FeeRuleRepository{pool: pool}
}

// Create inserts a new fee rule.
func (r *FeeRuleRepository) Create(ctx context.Context, rule *domain.FeeRule) error {
	query := `
		INSERT INTO fee_rules (` + feeRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Method,
		rule.CardBrand,
		rule.MinInstallments,
		rule.MaxInstallments,
		decimalToNumeric(rule.FeePercent),
		rule.SettlementDelayDays,
		timeToPgTimestamptz(rule.RegisteredAt),
	)

	return err
}

// GetByID retrieves a fee rule by ID.
func (r *FeeRuleRepository) GetByID(ctx context.Context, id string) (*domain.FeeRule, error) {
	query := `SELECT ` + feeRuleColumns + ` FROM fee_rules WHERE id = $1`

	rule, err := scanFeeRule(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoMatchingFeeRule
		}

		return nil, err
	}

	return rule, nil
}

// ListByMethodBrand lists the candidate rules for one (method, brand) pair.
func (r *FeeRuleRepository) ListByMethodBrand(ctx context.Context, method domain.PaymentMethod, cardBrand string) ([]*domain.FeeRule, error) {
	query := `
		SELECT ` + feeRuleColumns + `
		FROM fee_rules
		WHERE method = $1 AND card_brand = $2
		ORDER BY registered_at DESC
	`

	return r.queryFeeRules(ctx, query, method, cardBrand)
}

// List lists fee rules with pagination.
func (r *FeeRuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error) {
	query := `
		SELECT ` + feeRuleColumns + `
		FROM fee_rules
		ORDER BY method, card_brand, min_installments
		LIMIT $1 OFFSET $2
	`

	return r.queryFeeRules(ctx, query, limit, offset)
}

// Delete removes a fee rule.
func (r *FeeRuleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM fee_rules WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNoMatchingFeeRule
	}

	return nil
}

func (r *FeeRuleRepository) queryFeeRules(ctx context.Context, query string, args ...any) ([]*domain.FeeRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.FeeRule
	for rows.Next() {
		rule, err := scanFeeRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanFeeRule(row pgx.Row) (*domain.FeeRule, error) {
	var (
		rule         domain.FeeRule
		feePercent   pgtype.Numeric
		registeredAt pgtype.Timestamptz
	)

	err := row.Scan(
		&rule.ID,
		&rule.Method,
		&rule.CardBrand,
		&rule.MinInstallments,
		&rule.MaxInstallments,
		&feePercent,
		&rule.SettlementDelayDays,
		&registeredAt,
	)
	if err != nil {
		return nil, err
	}

	rule.FeePercent = numericToDecimal(feePercent)
	rule.RegisteredAt = registeredAt.Time

	return &rule, nil
}
