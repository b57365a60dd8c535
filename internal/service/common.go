package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	f[field] = message
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, map[string]any(f))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// isValidID reports whether id can name a stored row. Every primary key is a UUID.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// maxPage bounds page numbers so (page-1)*pageSize cannot overflow.
func maxPage(pageSize int) int {
	if pageSize <= 0 {
		return math.MaxInt
	}
	return math.MaxInt / pageSize
}

func trimOptional(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	return &trimmed
}

func loadTicket(ctx context.Context, tickets repository.TicketRepository, id string) (*domain.Ticket, error) {
	if !isValidID(id) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	ticket, err := tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func loadUser(ctx context.Context, users repository.UserRepository, id string) (*domain.User, error) {
	if !isValidID(id) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func stringPreview(body string, limit int) string {
	body = strings.TrimSpace(body)
	if runeLen(body) <= limit {
		return body
	}
	return string([]rune(body)[:limit]) + "..."
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
