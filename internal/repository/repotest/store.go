// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository"
)

// ErrDuplicateEmail mirrors the unique constraint on users.email.
var ErrDuplicateEmail = errors.New("duplicate key value violates unique constraint \"users_email_key\"")

// Store holds every table in memory. The zero value is not usable; call NewStore.
type Store struct {
	mu          sync.Mutex
	last        time.Time
	users       map[string]domain.User
	tickets     map[string]domain.Ticket
	comments    map[string]domain.Comment
	attachments map[string]domain.Attachment
	history     []domain.TicketHistory
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       map[string]domain.User{},
		tickets:     map[string]domain.Ticket{},
		comments:    map[string]domain.Comment{},
		attachments: map[string]domain.Attachment{},
	}
}

// now returns strictly increasing timestamps so ordering by time is deterministic.
func (s *Store) now() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Tickets() repository.TicketRepository         { return ticketRepo{s} }
func (s *Store) Comments() repository.CommentRepository       { return commentRepo{s} }
func (s *Store) Attachments() repository.AttachmentRepository { return attachmentRepo{s} }
func (s *Store) History() repository.TicketHistoryRepository  { return historyRepo{s} }
func (s *Store) Analytics() repository.AnalyticsRepository    { return analyticsRepo{s} }
func (s *Store) Transactor() repository.Transactor            { return transactor{s} }

// AddUser inserts a user directly and returns the stored copy.
func (s *Store) AddUser(username string, role domain.Role) *domain.User {
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := s.Users().Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// HistoryEntries returns every audit entry in insertion order.
func (s *Store) HistoryEntries() []domain.TicketHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TicketHistory(nil), s.history...)
}

type snapshot struct {
	users       map[string]domain.User
	tickets     map[string]domain.Ticket
	comments    map[string]domain.Comment
	attachments map[string]domain.Attachment
	history     []domain.TicketHistory
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		users:       cloneMap(s.users),
		tickets:     cloneMap(s.tickets),
		comments:    cloneMap(s.comments),
		attachments: cloneMap(s.attachments),
		history:     append([]domain.TicketHistory(nil), s.history...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.tickets = snap.tickets
	s.comments = snap.comments
	s.attachments = snap.attachments
	s.history = snap.history
}

type txKey struct{}

// transactor restores the pre-transaction state when fn fails.
type transactor struct{ s *Store }

func (t transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	r.s.mu.Lock()
	var matched []domain.User
	for _, user := range r.s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, user)
	}
	r.s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = r.s.now()
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket = cloneTicket(ticket)
	return &ticket, nil
}

func (r ticketRepo) ListMine(_ context.Context, userID string) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if ticket.IsCreator(userID) || ticket.IsAssignee(userID) {
			result = append(result, cloneTicket(ticket))
		}
	}
	r.s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	for key, comment := range r.s.comments {
		if comment.TicketID == id {
			delete(r.s.comments, key)
		}
	}
	for key, attachment := range r.s.attachments {
		if attachment.TicketID == id {
			delete(r.s.attachments, key)
		}
	}
	return nil
}

func cloneTicket(ticket domain.Ticket) domain.Ticket {
	if ticket.AssignedTo != nil {
		assignee := *ticket.AssignedTo
		ticket.AssignedTo = &assignee
	}
	return ticket
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[comment.TicketID]; !ok {
		return errors.New("insert or update on table \"comments\" violates foreign key constraint")
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.s.now()
	comment.UpdatedAt = comment.CreatedAt
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) Update(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.comments[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Content = comment.Content
	stored.UpdatedAt = r.s.now()
	r.s.comments[comment.ID] = stored
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r commentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &comment, nil
}

func (r commentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	r.s.mu.Lock()
	var result []domain.Comment
	for _, comment := range r.s.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if !includeInternal && comment.Visibility != domain.CommentVisibilityPublic {
			continue
		}
		result = append(result, comment)
	}
	r.s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type attachmentRepo struct{ s *Store }

func (r attachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[attachment.TicketID]; !ok {
		return errors.New("insert or update on table \"attachments\" violates foreign key constraint")
	}
	attachment.ID = uuid.NewString()
	attachment.UploadedAt = r.s.now()
	r.s.attachments[attachment.ID] = *attachment
	return nil
}

func (r attachmentRepo) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	attachment, ok := r.s.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &attachment, nil
}

func (r attachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	r.s.mu.Lock()
	var result []domain.Attachment
	for _, attachment := range r.s.attachments {
		if attachment.TicketID == ticketID {
			result = append(result, attachment)
		}
	}
	r.s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.Before(result[j].UploadedAt) })
	return result, nil
}

func (r attachmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.attachments, id)
	return nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = r.s.now()
	r.s.history = append(r.s.history, *history)
	return nil
}

func (r historyRepo) Query(_ context.Context, filter repository.HistoryFilter) ([]domain.TicketHistory, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []domain.TicketHistory
	for i := len(r.s.history) - 1; i >= 0; i-- {
		entry := r.s.history[i]
		ticket, exists := r.s.tickets[entry.TicketID]
		if filter.TicketID != nil && entry.TicketID != *filter.TicketID {
			continue
		}
		if filter.ChangedBy != nil && entry.ChangedBy != *filter.ChangedBy {
			continue
		}
		if filter.Status != nil && (!exists || ticket.Status != *filter.Status) {
			continue
		}
		if filter.Priority != nil && (!exists || ticket.Priority != *filter.Priority) {
			continue
		}
		if filter.CreatedBy != nil && (!exists || ticket.CreatedBy != *filter.CreatedBy) {
			continue
		}
		matched = append(matched, entry)
	}
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) CountBy(_ context.Context, dimension string, assignee *string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[string]int{}
	for _, ticket := range r.s.tickets {
		if assignee != nil && !ticket.IsAssignee(*assignee) {
			continue
		}
		switch dimension {
		case repository.DimensionStatus:
			counts[string(ticket.Status)]++
		case repository.DimensionPriority:
			counts[string(ticket.Priority)]++
		case repository.DimensionIssueType:
			counts[string(ticket.IssueType)]++
		default:
			return nil, errors.New("unsupported dimension " + dimension)
		}
	}
	return counts, nil
}

func (r analyticsRepo) CountCreatedSince(_ context.Context, since time.Time, assignee *string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, ticket := range r.s.tickets {
		if assignee != nil && !ticket.IsAssignee(*assignee) {
			continue
		}
		if !ticket.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
