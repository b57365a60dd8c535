package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

const maxCommentLength = 1000

// CommentService manages discussion threads on tickets.
type CommentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CommentInput is the payload for a new comment.
type CommentInput struct {
	Content    string
	Visibility domain.CommentVisibility
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
	}
}

// CreateComment posts a comment on a ticket.
func (s *CommentService) CreateComment(ctx context.Context, actor *domain.User, ticketID string, input CommentInput) (*domain.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if input.Visibility == "" {
		input.Visibility = domain.CommentVisibilityPublic
	}
	errs := fieldErrors{}
	validateCommentContent(errs, input.Content)
	if !input.Visibility.Valid() {
		errs.add("visibility", "must be public or internal")
	}
	if err := errs.err("invalid comment"); err != nil {
		return nil, err
	}

	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckCommentCreate(ticket, actor, input.Visibility); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Content:    input.Content,
		Visibility: input.Visibility,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventCommentAdded, ticket.ID, actor.ID, events.CommentAddedPayload{
		CommentID:   comment.ID,
		Visibility:  comment.Visibility,
		BodyPreview: stringPreview(comment.Content, 120),
	}))
	return comment, nil
}

// UpdateComment replaces the content of a comment.
func (s *CommentService) UpdateComment(ctx context.Context, actor *domain.User, commentID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	errs := fieldErrors{}
	validateCommentContent(errs, content)
	if err := errs.err("invalid comment"); err != nil {
		return nil, err
	}

	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckCommentUpdate(comment, actor); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := auth.CheckCommentDelete(comment, actor); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListForTicket returns the comments on a ticket the actor may view.
// Internal comments are only included for privileged actors.
func (s *CommentService) ListForTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := loadTicket(ctx, s.tickets, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckViewAccess(ticket, actor); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, auth.CanSeeInternalComments(actor))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

func (s *CommentService) loadComment(ctx context.Context, id string) (*domain.Comment, error) {
	if !isValidID(id) {
		return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": id})
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

func validateCommentContent(errs fieldErrors, content string) {
	if n := runeLen(content); n < 1 || n > maxCommentLength {
		errs.add("content", "must be between 1 and 1000 characters")
	}
}
