package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanline/support-service/internal/domain"
)

// QuoteRepository resolves quote references for display.
type QuoteRepository interface {
	GetByID(ctx context.Context, id string) (*domain.QuoteRef, error)
}

type quoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository returns a Postgres-backed implementation.
func NewQuoteRepository(pool *pgxpool.Pool) QuoteRepository {
	return &quoteRepository{pool: pool}
}

func (r *quoteRepository) GetByID(ctx context.Context, id string) (*domain.QuoteRef, error) {
	const query = `SELECT id, quote_number FROM quotes WHERE id=$1`
	var ref domain.QuoteRef
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ref.ID, &ref.Number); err != nil {
		return nil, err
	}
	return &ref, nil
}
