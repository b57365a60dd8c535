package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Dimensions that ticket counts can be grouped by.
const (
	DimensionStatus    = "status"
	DimensionPriority  = "priority"
	DimensionIssueType = "types_of_issue"
)

var groupableColumns = map[string]struct{}{
	DimensionStatus:    {},
	DimensionPriority:  {},
	DimensionIssueType: {},
}

// AnalyticsRepository aggregates ticket counts for dashboards. A non-nil assignee
// restricts every aggregate to tickets assigned to that user.
type AnalyticsRepository interface {
	CountBy(ctx context.Context, dimension string, assignee *string) (map[string]int, error)
	CountCreatedSince(ctx context.Context, since time.Time, assignee *string) (int, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository builds repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) CountBy(ctx context.Context, dimension string, assignee *string) (map[string]int, error) {
	if _, ok := groupableColumns[dimension]; !ok {
		return nil, fmt.Errorf("unsupported dimension %q", dimension)
	}
	query := fmt.Sprintf(`
        SELECT %[1]s, COUNT(*) FROM tickets
        WHERE ($1::uuid IS NULL OR assigned_to=$1::uuid)
        GROUP BY %[1]s`, dimension)

	rows, err := conn(ctx, r.pool).Query(ctx, query, assignee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

func (r *analyticsRepository) CountCreatedSince(ctx context.Context, since time.Time, assignee *string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE created_at >= $1 AND ($2::uuid IS NULL OR assigned_to=$2::uuid)`
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx, query, since, assignee).Scan(&count)
	return count, err
}
