package service

import (
	"context"
	"strings"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// AssignTicket points the ticket at assigneeID. The assignee must exist; its
// role is only checked when AssignRequiresPrivilegedUser is set.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("invalid assignment", map[string]any{domain.FieldAssignedTo: "is required"})
	}

	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckAssignPermission(ticket, actor); err != nil {
		return nil, err
	}
	assignee, err := loadUser(ctx, s.users, assigneeID)
	if err != nil {
		return nil, err
	}
	if s.opts.AssignRequiresPrivilegedUser {
		if err := auth.AuthorizeAssignee(assignee); err != nil {
			return nil, err
		}
	}

	previous := ticket.AssignedTo
	var changes []events.FieldChange
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		changes = applyUpdate(ticket, domain.TicketUpdate{AssignedTo: &assignee.ID})
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.recordChanges(ctx, actor.ID, ticket.ID, changes)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(changes) > 0 {
		publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketAssigned, ticket.ID, actor.ID, events.TicketAssignedPayload{
			PreviousAssignee: previous,
			AssignedTo:       assignee.ID,
		}))
	}
	return ticket, nil
}
