package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/repository"
	"github.com/TahjibNil75/trackIT/internal/storage"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// ErrEmptyUpdate is returned when an update names no fields and carries no files.
var ErrEmptyUpdate = apperrors.NewDomainError("EMPTY_UPDATE", "No fields provided for update.", http.StatusBadRequest, nil)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	history     repository.TicketHistoryRepository
	tx          repository.Transactor
	uploader    *storage.Uploader
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	opts        config.TicketsConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	HistoryRepo    repository.TicketHistoryRepository
	Transactor     repository.Transactor
	Uploader       *storage.Uploader
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Options        config.TicketsConfig
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
	IssueType   domain.IssueType
	AssignedTo  *string
}

// TicketDetail is a ticket with the comments visible to the caller and its attachments.
type TicketDetail struct {
	Ticket      domain.Ticket
	Comments    []domain.Comment
	Attachments []domain.Attachment
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	opts := deps.Options
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = 10
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		history:     deps.HistoryRepo,
		tx:          deps.Transactor,
		uploader:    deps.Uploader,
		dispatcher:  deps.Dispatcher,
		logger:      nopLogger(deps.Logger),
		opts:        opts,
	}
}

// CreateTicket opens a ticket for actor, records the creation in history and
// stores any uploaded files.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput, files []storage.File) (*TicketDetail, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.AssignedTo = trimOptional(input.AssignedTo)
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	if input.AssignedTo != nil {
		assignee, err := loadUser(ctx, s.users, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if err := auth.AuthorizeAssignee(assignee); err != nil {
			return nil, err
		}
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Subject:     input.Subject,
		Description: input.Description,
		Priority:    input.Priority,
		IssueType:   input.IssueType,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   actor.ID,
		AssignedTo:  input.AssignedTo,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return s.history.Create(ctx, &domain.TicketHistory{
			TicketID:  ticket.ID,
			Action:    domain.HistoryActionCreated,
			OldValue:  "",
			NewValue:  string(domain.TicketStatusOpen),
			ChangedBy: actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	attachments, err := s.attachFiles(ctx, ticket.ID, files)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCreated, ticket.ID, actor.ID, events.TicketCreatedPayload{
		Subject:    ticket.Subject,
		Priority:   ticket.Priority,
		IssueType:  ticket.IssueType,
		AssignedTo: ticket.AssignedTo,
	}))
	return &TicketDetail{Ticket: *ticket, Attachments: attachments}, nil
}

// GetTicket returns a ticket the actor may view, with comments and attachments.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*TicketDetail, error) {
	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckViewAccess(ticket, actor); err != nil {
		return nil, err
	}
	return s.detail(ctx, actor, ticket)
}

func (s *TicketService) detail(ctx context.Context, actor *domain.User, ticket *domain.Ticket) (*TicketDetail, error) {
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, auth.CanSeeInternalComments(actor))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: *ticket, Comments: comments, Attachments: attachments}, nil
}

// ListMyTickets returns tickets the actor created or is assigned to, newest first.
func (s *TicketService) ListMyTickets(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListMine(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(tickets) == 0 {
		if s.opts.MineEmptyAsNotFound {
			return nil, apperrors.NewNotFound("tickets", map[string]any{"user_id": actor.ID})
		}
		return []domain.Ticket{}, nil
	}
	return tickets, nil
}

// UpdateTicket applies a partial update. Every field whose string form changes
// gets one history entry, written in the same transaction as the ticket row.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, update domain.TicketUpdate, files []storage.File) (*TicketDetail, error) {
	if update.IsEmpty() && len(files) == 0 {
		return nil, ErrEmptyUpdate
	}
	update = normalizeUpdate(update)
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckUpdatePermission(update, actor, ticket); err != nil {
		return nil, err
	}
	// No-op status and priority updates pass the field rules, so the response
	// still needs read access.
	if err := auth.CheckViewAccess(ticket, actor); err != nil {
		return nil, err
	}
	if len(files) > 0 {
		if err := auth.CheckAttachmentUpload(ticket, actor); err != nil {
			return nil, err
		}
	}
	if update.AssignedTo != nil && !ticket.IsAssignee(*update.AssignedTo) {
		assignee, err := loadUser(ctx, s.users, *update.AssignedTo)
		if err != nil {
			return nil, err
		}
		if err := auth.AuthorizeAssignee(assignee); err != nil {
			return nil, err
		}
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	var changes []events.FieldChange
	if !update.IsEmpty() {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			changes = applyUpdate(ticket, update)
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
			return s.recordChanges(ctx, actor.ID, ticket.ID, changes)
		})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if _, err := s.attachFiles(ctx, ticket.ID, files); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketUpdated, ticket.ID, actor.ID, events.TicketUpdatedPayload{
			Changes: changes,
		}))
	}
	return s.detail(ctx, actor, ticket)
}

// UpdateStatus changes only the status field.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus) (*TicketDetail, error) {
	return s.UpdateTicket(ctx, actor, ticketID, domain.TicketUpdate{Status: &status}, nil)
}

// UpdatePriority changes only the priority field.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.User, ticketID string, priority domain.TicketPriority) (*TicketDetail, error) {
	return s.UpdateTicket(ctx, actor, ticketID, domain.TicketUpdate{Priority: &priority}, nil)
}

// DeleteTicket removes a ticket with its comments and attachments. Stored
// objects are removed afterwards on a best-effort basis.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return err
	}
	if err := auth.CheckDeletePermission(ticket, actor); err != nil {
		return err
	}

	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
		}
		return apperrors.MapError(err)
	}

	for _, attachment := range attachments {
		if attachment.StorageKey == "" || s.uploader == nil {
			continue
		}
		if err := s.uploader.Remove(ctx, attachment.StorageKey); err != nil {
			s.logger.Warn("failed to remove attachment object",
				zap.String("ticket_id", ticket.ID),
				zap.String("storage_key", attachment.StorageKey),
				zap.Error(err))
		}
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventTicketDeleted, ticket.ID, actor.ID, events.TicketDeletedPayload{
		Subject:     ticket.Subject,
		Attachments: len(attachments),
	}))
	return nil
}

// DeleteAttachment removes one attachment row and its stored object together.
// If the object cannot be removed the row is kept.
func (s *TicketService) DeleteAttachment(ctx context.Context, actor *domain.User, attachmentID string) error {
	if !isValidID(attachmentID) {
		return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
	}
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
		}
		return apperrors.MapError(err)
	}
	ticket, err := loadTicket(ctx, s.tickets, attachment.TicketID)
	if err != nil {
		return err
	}
	if err := auth.CheckAttachmentDelete(ticket, actor); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
			return err
		}
		if attachment.StorageKey == "" {
			return nil
		}
		if s.uploader == nil {
			return apperrors.NewUnavailable("STORAGE_UNAVAILABLE", "Attachment storage is not configured.")
		}
		return s.uploader.Remove(ctx, attachment.StorageKey)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) recordChanges(ctx context.Context, actorID, ticketID string, changes []events.FieldChange) error {
	for _, change := range changes {
		entry := &domain.TicketHistory{
			TicketID:  ticketID,
			Action:    domain.HistoryActionChanged(change.Field),
			OldValue:  change.OldValue,
			NewValue:  change.NewValue,
			ChangedBy: actorID,
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *TicketService) validateFiles(files []storage.File) error {
	if len(files) == 0 {
		return nil
	}
	if s.uploader == nil {
		return apperrors.NewUnavailable("STORAGE_UNAVAILABLE", "Attachment storage is not configured.")
	}
	for _, file := range files {
		if _, err := s.uploader.Validate(file); err != nil {
			return err
		}
	}
	return nil
}

// attachFiles runs after the ticket is committed. A failure leaves the ticket in
// place and stops at the first file that could not be stored.
func (s *TicketService) attachFiles(ctx context.Context, ticketID string, files []storage.File) ([]domain.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	attachments := make([]domain.Attachment, 0, len(files))
	for _, file := range files {
		obj, err := s.uploader.Upload(ctx, file)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		attachment := &domain.Attachment{
			TicketID:   ticketID,
			FileName:   obj.FileName,
			FileURL:    obj.URL,
			FileType:   obj.ContentType,
			StorageKey: obj.Key,
			SizeBytes:  obj.Size,
		}
		if err := s.attachments.Create(ctx, attachment); err != nil {
			if rmErr := s.uploader.Remove(ctx, obj.Key); rmErr != nil {
				s.logger.Warn("failed to remove orphaned upload", zap.String("storage_key", obj.Key), zap.Error(rmErr))
			}
			return nil, apperrors.MapError(err)
		}
		attachments = append(attachments, *attachment)
	}
	return attachments, nil
}

func validateCreate(input TicketCreateInput) error {
	errs := fieldErrors{}
	validateSubject(errs, input.Subject)
	validateDescription(errs, input.Description)
	if !input.Priority.Valid() {
		errs.add(domain.FieldPriority, "must be one of low, medium, high")
	}
	if !input.IssueType.Valid() {
		errs.add(domain.FieldIssueType, "must be one of hardware, software, access_permission, other")
	}
	if input.AssignedTo != nil && strings.TrimSpace(*input.AssignedTo) == "" {
		errs.add(domain.FieldAssignedTo, "must not be empty")
	}
	return errs.err("invalid ticket payload")
}

func validateUpdate(update domain.TicketUpdate) error {
	errs := fieldErrors{}
	if update.Subject != nil {
		validateSubject(errs, *update.Subject)
	}
	if update.Description != nil {
		validateDescription(errs, *update.Description)
	}
	if update.Priority != nil && !update.Priority.Valid() {
		errs.add(domain.FieldPriority, "must be one of low, medium, high")
	}
	if update.IssueType != nil && !update.IssueType.Valid() {
		errs.add(domain.FieldIssueType, "must be one of hardware, software, access_permission, other")
	}
	if update.Status != nil && !update.Status.Valid() {
		errs.add(domain.FieldStatus, "unknown status")
	}
	if update.AssignedTo != nil && *update.AssignedTo == "" {
		errs.add(domain.FieldAssignedTo, "must not be empty")
	}
	return errs.err("invalid ticket update")
}

func validateSubject(errs fieldErrors, subject string) {
	if n := runeLen(subject); n < 5 || n > 200 {
		errs.add(domain.FieldSubject, "must be between 5 and 200 characters")
	}
}

func validateDescription(errs fieldErrors, description string) {
	if runeLen(description) < 10 {
		errs.add(domain.FieldDescription, "must be at least 10 characters")
	}
}

func normalizeUpdate(update domain.TicketUpdate) domain.TicketUpdate {
	if update.Subject != nil {
		subject := strings.TrimSpace(*update.Subject)
		update.Subject = &subject
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		update.Description = &description
	}
	update.AssignedTo = trimOptional(update.AssignedTo)
	return update
}

// applyUpdate mutates ticket and returns the fields whose string form changed.
func applyUpdate(ticket *domain.Ticket, update domain.TicketUpdate) []events.FieldChange {
	var changes []events.FieldChange
	track := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, events.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	if update.Subject != nil {
		track(domain.FieldSubject, ticket.Subject, *update.Subject)
		ticket.Subject = *update.Subject
	}
	if update.Description != nil {
		track(domain.FieldDescription, ticket.Description, *update.Description)
		ticket.Description = *update.Description
	}
	if update.IssueType != nil {
		track(domain.FieldIssueType, string(ticket.IssueType), string(*update.IssueType))
		ticket.IssueType = *update.IssueType
	}
	if update.Priority != nil {
		track(domain.FieldPriority, string(ticket.Priority), string(*update.Priority))
		ticket.Priority = *update.Priority
	}
	if update.Status != nil {
		track(domain.FieldStatus, string(ticket.Status), string(*update.Status))
		ticket.Status = *update.Status
	}
	if update.AssignedTo != nil {
		track(domain.FieldAssignedTo, assigneeString(ticket.AssignedTo), *update.AssignedTo)
		assignee := *update.AssignedTo
		ticket.AssignedTo = &assignee
	}
	return changes
}

// assigneeString renders an unassigned ticket as the empty string.
func assigneeString(assignee *string) string {
	if assignee == nil {
		return ""
	}
	return *assignee
}
