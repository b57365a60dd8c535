package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TahjibNil75/trackIT/internal/domain"
)

// HistoryFilter narrows audit queries. Status and Priority match the ticket's
// current values; CreatedBy restricts results to tickets opened by that user.
type HistoryFilter struct {
	TicketID  *string
	Status    *domain.TicketStatus
	Priority  *domain.TicketPriority
	ChangedBy *string
	CreatedBy *string
	Limit     int
	Offset    int
}

// TicketHistoryRepository stores audit entries. Entries are never updated or deleted.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	Query(ctx context.Context, filter HistoryFilter) ([]domain.TicketHistory, int, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, action, old_value, new_value, changed_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		history.TicketID,
		history.Action,
		history.OldValue,
		history.NewValue,
		history.ChangedBy,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *ticketHistoryRepository) Query(ctx context.Context, filter HistoryFilter) ([]domain.TicketHistory, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("h.ticket_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.ChangedBy != nil {
		args = append(args, *filter.ChangedBy)
		clauses = append(clauses, fmt.Sprintf("h.changed_by=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}

	from := `FROM ticket_history h LEFT JOIN tickets t ON t.id = h.ticket_id WHERE ` + strings.Join(clauses, " AND ")
	db := conn(ctx, r.pool)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT h.id, h.ticket_id, h.action, h.old_value, h.new_value, h.changed_by, h.created_at
        %s ORDER BY h.created_at DESC, h.id DESC LIMIT %d OFFSET %d`, from, limit, offset)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.Action,
			&history.OldValue,
			&history.NewValue,
			&history.ChangedBy,
			&history.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, history)
	}
	return result, total, rows.Err()
}
