package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdash/flowdash/internal/domain"
)

// GoalRepository implements usecase.GoalRepository. Tiers are stored as a
// JSONB document since they are always read and replaced as one unit.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Upsert creates or replaces a seller's goal for a period.
func (r *GoalRepository) Upsert(ctx context.Context, goal *domain.Goal) error {
	tiers, err := json.Marshal(goal.Tiers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO goals (seller_id, period, tiers, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (seller_id, period)
		DO UPDATE SET tiers = EXCLUDED.tiers, updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		goal.SellerID,
		goal.Period,
		tiers,
		timeToPgTimestamptz(time.Now().UTC()),
	)

	return err
}

// GetBySellerAndPeriod retrieves a seller's goal for a period.
func (r *GoalRepository) GetBySellerAndPeriod(ctx context.Context, sellerID string, period domain.GoalPeriod) (*domain.Goal, error) {
	query := `SELECT seller_id, period, tiers FROM goals WHERE seller_id = $1 AND period = $2`

	var (
		goal  domain.Goal
		tiers []byte
	)

	err := r.pool.QueryRow(ctx, query, sellerID, period).Scan(&goal.SellerID, &goal.Period, &tiers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}

		return nil, err
	}

	if err := json.Unmarshal(tiers, &goal.Tiers); err != nil {
		return nil, err
	}

	return &goal, nil
}
