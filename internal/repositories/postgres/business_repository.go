package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
)

// PostgresBusinessRepository implements BusinessRepository using PostgreSQL
type PostgresBusinessRepository struct {
	db *sql.DB
}

// NewPostgresBusinessRepository creates a new PostgreSQL business repository
func NewPostgresBusinessRepository(db *sql.DB) repositories.BusinessRepository {
	return &PostgresBusinessRepository{db: db}
}

const businessColumns = `id, name, owner, job_name, funds, metadata, created_at, updated_at`

// Create inserts a new business
func (r *PostgresBusinessRepository) Create(ctx context.Context, business *entities.Business) (int64, error) {
	if err := business.Validate(); err != nil {
		return 0, err
	}
	metadata, err := business.MarshalMetadata()
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO businesses (name, owner, job_name, funds, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		business.Name, business.Owner, business.JobName, business.Funds, metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create business: %w", err)
	}
	return id, nil
}

// GetByID retrieves a business by ID
func (r *PostgresBusinessRepository) GetByID(ctx context.Context, id int64) (*entities.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	business, err := scanBusiness(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return business, nil
}

// List retrieves every business
func (r *PostgresBusinessRepository) List(ctx context.Context) ([]*entities.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses ORDER BY id`
	return r.queryBusinesses(ctx, query)
}

// ListByOwner retrieves the businesses owned by a citizen
func (r *PostgresBusinessRepository) ListByOwner(ctx context.Context, owner string) ([]*entities.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE owner = $1 ORDER BY id`
	return r.queryBusinesses(ctx, query, owner)
}

// UpdateMetadata replaces the metadata blob
func (r *PostgresBusinessRepository) UpdateMetadata(ctx context.Context, id int64, metadata map[string]any) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal business metadata: %w", err)
	}

	query := `UPDATE businesses SET metadata = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("failed to update business metadata: %w", err)
	}
	affected, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if !affected {
		return fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	return nil
}

// AddFunds increments funds unconditionally
func (r *PostgresBusinessRepository) AddFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	query := `UPDATE businesses SET funds = funds + $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("failed to add funds: %w", err)
	}
	return rowsAffected(result)
}

// SubtractFunds decrements funds only if the current balance covers amount.
// The guard lives in the WHERE clause so concurrent withdrawals serialize on
// the row and can never drive the balance negative.
func (r *PostgresBusinessRepository) SubtractFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	query := `UPDATE businesses SET funds = funds - $1, updated_at = NOW() WHERE id = $2 AND funds >= $1`
	result, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("failed to subtract funds: %w", err)
	}
	return rowsAffected(result)
}

// SetFunds sets an absolute balance
func (r *PostgresBusinessRepository) SetFunds(ctx context.Context, id int64, amount int64) (bool, error) {
	query := `UPDATE businesses SET funds = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("failed to set funds: %w", err)
	}
	return rowsAffected(result)
}

// GetFunds reads the balance
func (r *PostgresBusinessRepository) GetFunds(ctx context.Context, id int64) (int64, error) {
	var funds int64
	err := r.db.QueryRowContext(ctx, `SELECT funds FROM businesses WHERE id = $1`, id).Scan(&funds)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: business %d", repositories.ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get funds: %w", err)
	}
	return funds, nil
}

func (r *PostgresBusinessRepository) queryBusinesses(ctx context.Context, query string, args ...any) ([]*entities.Business, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	var businesses []*entities.Business
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, business)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate businesses: %w", err)
	}
	return businesses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*entities.Business, error) {
	var b entities.Business
	var metadata []byte
	if err := row.Scan(&b.ID, &b.Name, &b.Owner, &b.JobName, &b.Funds, &metadata, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := b.UnmarshalMetadata(metadata); err != nil {
		return nil, err
	}
	return &b, nil
}

func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
