package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

const auditColumns = `id, user_id, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at`

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args, err := auditArgs(log)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, auditInsertQuery, args...)

	return err
}

// CreateTx inserts a new audit log entry within a transaction, so the trail
// commits or rolls back together with the action it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx := tx.(*Tx).PgxTx()

	args, err := auditArgs(log)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, auditInsertQuery, args...)

	return err
}

const auditInsertQuery = `
	INSERT INTO audit_logs (` + auditColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func auditArgs(log *domain.AuditLog) ([]any, error) {
	var beforeStateJSON, afterStateJSON []byte
	var err error

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return nil, err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return nil, err
		}
	}

	return []any{
		log.ID,
		log.UserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeStateJSON,
		afterStateJSON,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	}, nil
}

// List retrieves audit logs with filtering.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}
	argPos := 1

	addFilter := func(clause string, value any) {
		query += ` AND ` + clause + ` $` + strconv.Itoa(argPos)
		args = append(args, value)
		argPos++
	}

	if filter.UserID != "" {
		addFilter("user_id =", filter.UserID)
	}

	if filter.Action != "" {
		addFilter("action =", filter.Action)
	}

	if filter.ResourceType != "" {
		addFilter("resource_type =", filter.ResourceType)
	}

	if filter.ResourceID != "" {
		addFilter("resource_id =", filter.ResourceID)
	}

	if filter.StartDate != nil {
		addFilter("created_at >=", *filter.StartDate)
	}

	if filter.EndDate != nil {
		addFilter("created_at <=", *filter.EndDate)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// GetByResourceID retrieves all audit logs for a specific resource.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, domain.AuditFilter{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
}

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var (
		log             domain.AuditLog
		beforeStateJSON []byte
		afterStateJSON  []byte
		createdAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.Action,
		&log.ResourceType,
		&log.ResourceID,
		&log.RequestID,
		&beforeStateJSON,
		&afterStateJSON,
		&log.Status,
		&log.ErrorMessage,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if beforeStateJSON != nil {
		_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
	}

	if afterStateJSON != nil {
		_ = json.Unmarshal(afterStateJSON, &log.AfterState)
	}

	log.CreatedAt = createdAt.Time

	return &log, nil
}
