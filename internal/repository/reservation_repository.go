package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanline/support-service/internal/domain"
)

// ReservationRepository resolves reservation references for display.
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ReservationRef, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository returns a Postgres-backed implementation.
func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.ReservationRef, error) {
	const query = `SELECT id, reservation_number FROM reservations WHERE id=$1`
	var ref domain.ReservationRef
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ref.ID, &ref.Number); err != nil {
		return nil, err
	}
	return &ref, nil
}
