package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanline/support-service/internal/domain"
)

// DriverRepository is the read-side of the platform driver directory.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	SearchByName(ctx context.Context, name string, limit int) ([]domain.Driver, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Driver, error)
}

type driverRepository struct {
	pool *pgxpool.Pool
}

// NewDriverRepository returns a Postgres-backed implementation.
func NewDriverRepository(pool *pgxpool.Pool) DriverRepository {
	return &driverRepository{pool: pool}
}

const driverColumns = `id, name, phone, status, created_at, updated_at`

func (r *driverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	const query = `SELECT ` + driverColumns + ` FROM drivers WHERE id=$1`
	var driver domain.Driver
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) SearchByName(ctx context.Context, name string, limit int) ([]domain.Driver, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	const query = `SELECT ` + driverColumns + ` FROM drivers WHERE LOWER(name) LIKE $1 ORDER BY name ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

func (r *driverRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Driver, error) {
	if len(ids) == 0 {
		return []domain.Driver{}, nil
	}
	const query = `SELECT ` + driverColumns + ` FROM drivers WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDrivers(rows)
}

func scanDrivers(rows pgx.Rows) ([]domain.Driver, error) {
	var result []domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&driver.Status,
			&driver.CreatedAt,
			&driver.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, driver)
	}
	return result, rows.Err()
}
