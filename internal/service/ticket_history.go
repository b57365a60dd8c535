package service

import (
	"context"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// HistoryQuery filters the audit log. Status and Priority match the ticket's current values.
type HistoryQuery struct {
	Page      int
	Status    *domain.TicketStatus
	Priority  *domain.TicketPriority
	ChangedBy *string
	TicketID  *string
}

// HistoryPage is one page of audit entries, newest first.
type HistoryPage struct {
	Items      []domain.TicketHistory
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ListHistory returns a fixed-size page of history. Non-privileged actors only
// see entries for tickets they created.
func (s *TicketService) ListHistory(ctx context.Context, actor *domain.User, query HistoryQuery) (*HistoryPage, error) {
	errs := fieldErrors{}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Page < 1 {
		errs.add("page", "must be at least 1")
	}
	if query.Status != nil && !query.Status.Valid() {
		errs.add("status", "unknown status")
	}
	if query.Priority != nil && !query.Priority.Valid() {
		errs.add("priority", "unknown priority")
	}
	if query.TicketID != nil && !isValidID(*query.TicketID) {
		errs.add("ticket_id", "must be a valid id")
	}
	if query.ChangedBy != nil && !isValidID(*query.ChangedBy) {
		errs.add("changed_by", "must be a valid id")
	}
	pageSize := s.opts.HistoryPageSize
	if query.Page > maxPage(pageSize) {
		errs.add("page", "out of range")
	}
	if err := errs.err("invalid history query"); err != nil {
		return nil, err
	}

	filter := repository.HistoryFilter{
		TicketID:  query.TicketID,
		Status:    query.Status,
		Priority:  query.Priority,
		ChangedBy: query.ChangedBy,
		Limit:     pageSize,
		Offset:    (query.Page - 1) * pageSize,
	}
	if !auth.IsPrivileged(actor) {
		filter.CreatedBy = &actor.ID
	}

	items, total, err := s.history.Query(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.TicketHistory{}
	}
	return &HistoryPage{
		Items:      items,
		Total:      total,
		Page:       query.Page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}
