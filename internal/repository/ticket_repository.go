package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanline/support-service/internal/domain"
)

// SortKey selects the column a ticket search orders by.
type SortKey string

const (
	SortByLastMessageAt SortKey = "lastMessageAt"
	SortByCreatedAt     SortKey = "createdAt"
)

// SortOrder selects the direction of a ticket search.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TicketSearchQuery captures the combined filter/search/sort/page parameters
// executed as a single store-level query. ActorIDs, when non-nil, restricts
// results to tickets whose actor id is in the set.
type TicketSearchQuery struct {
	ActorID         *string
	ActorType       *domain.ActorType
	Status          *domain.TicketStatus
	AssignedAdminID *string
	ActorIDs        []string
	SortKey         SortKey
	SortOrder       SortOrder
	Limit           int
	Offset          int
}

// TicketUpdate describes a partial ticket mutation. Nil fields are left
// untouched; updated_at is bumped by UpdateFields.
type TicketUpdate struct {
	Status          *domain.TicketStatus
	AssignedAdminID *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateFields(ctx context.Context, id string, update TicketUpdate) error
	SetLastMessageAt(ctx context.Context, id string, at time.Time) error
	Search(ctx context.Context, query TicketSearchQuery) ([]domain.Ticket, int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, actor_type, actor_id, subject, linked_type, linked_id,
               status, priority, assigned_admin_id, last_message_at, created_at, updated_at, deleted_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (actor_type, actor_id, subject, linked_type, linked_id, status, priority,
                             assigned_admin_id, last_message_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.ActorType,
		ticket.ActorID,
		ticket.Subject,
		ticket.LinkedType,
		ticket.LinkedID,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedAdminID,
		ticket.LastMessageAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 AND deleted_at IS NULL`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ActorType,
		&ticket.ActorID,
		&ticket.Subject,
		&ticket.LinkedType,
		&ticket.LinkedID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedAdminID,
		&ticket.LastMessageAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id string, update TicketUpdate) error {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.AssignedAdminID != nil {
		args = append(args, *update.AssignedAdminID)
		sets = append(sets, fmt.Sprintf("assigned_admin_id=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d AND deleted_at IS NULL`,
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetLastMessageAt advances the recency index without touching updated_at:
// appending a message is not a ticket mutation.
func (r *ticketRepository) SetLastMessageAt(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE tickets SET last_message_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Search(ctx context.Context, query TicketSearchQuery) ([]domain.Ticket, int, error) {
	where, args := buildTicketSearchWhere(query)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, where, ticketOrderClause(query.SortKey, query.SortOrder), query.Limit, query.Offset)

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// buildTicketSearchWhere renders the WHERE clause for a search query. Kept
// separate from Search so the clause construction is testable without a
// database.
func buildTicketSearchWhere(query TicketSearchQuery) (string, []any) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if query.ActorID != nil {
		args = append(args, *query.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}
	if query.ActorType != nil {
		args = append(args, *query.ActorType)
		clauses = append(clauses, fmt.Sprintf("actor_type=$%d", len(args)))
	}
	if query.Status != nil {
		args = append(args, *query.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if query.AssignedAdminID != nil {
		args = append(args, *query.AssignedAdminID)
		clauses = append(clauses, fmt.Sprintf("assigned_admin_id=$%d", len(args)))
	}
	if query.ActorIDs != nil {
		args = append(args, query.ActorIDs)
		clauses = append(clauses, fmt.Sprintf("actor_id = ANY($%d)", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

// ticketOrderClause renders the ORDER BY expression. A null last_message_at
// falls back to created_at so never-messaged tickets still sort by recency.
func ticketOrderClause(key SortKey, order SortOrder) string {
	direction := "DESC"
	if order == SortAsc {
		direction = "ASC"
	}
	switch key {
	case SortByCreatedAt:
		return fmt.Sprintf("created_at %s, id %s", direction, direction)
	default:
		return fmt.Sprintf("COALESCE(last_message_at, created_at) %s, id %s", direction, direction)
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ActorType,
			&ticket.ActorID,
			&ticket.Subject,
			&ticket.LinkedType,
			&ticket.LinkedID,
			&ticket.Status,
			&ticket.Priority,
			&ticket.AssignedAdminID,
			&ticket.LastMessageAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
