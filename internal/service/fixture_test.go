package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/repository/repotest"
	"github.com/TahjibNil75/trackIT/internal/storage"
	"github.com/TahjibNil75/trackIT/internal/storage/storagetest"
)

type fixture struct {
	store    *repotest.Store
	objects  *storagetest.MemoryStore
	events   *[]events.Event
	tickets  *TicketService
	comments *CommentService

	admin   *domain.User
	manager *domain.User
	support *domain.User
	alice   *domain.User
	bob     *domain.User
}

func newFixture(t *testing.T, opts ...func(*config.TicketsConfig)) *fixture {
	t.Helper()

	ticketOpts := config.TicketsConfig{HistoryPageSize: 10, MineEmptyAsNotFound: true}
	for _, opt := range opts {
		opt(&ticketOpts)
	}

	store := repotest.NewStore()
	objects := storagetest.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	for _, eventType := range NotifiedEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			*published = append(*published, e)
			return nil
		})
	}

	f := &fixture{
		store:   store,
		objects: objects,
		events:  published,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:     store.Tickets(),
			UserRepo:       store.Users(),
			CommentRepo:    store.Comments(),
			AttachmentRepo: store.Attachments(),
			HistoryRepo:    store.History(),
			Transactor:     store.Transactor(),
			Uploader:       storage.NewUploader(objects, 0),
			Dispatcher:     dispatcher,
			Logger:         zap.NewNop(),
			Options:        ticketOpts,
		}),
		comments: NewCommentService(CommentDependencies{
			TicketRepo:  store.Tickets(),
			CommentRepo: store.Comments(),
			Dispatcher:  dispatcher,
		}),
		admin:   store.AddUser("admin", domain.RoleAdmin),
		manager: store.AddUser("manager", domain.RoleManager),
		support: store.AddUser("support", domain.RoleITSupport),
		alice:   store.AddUser("alice", domain.RoleUser),
		bob:     store.AddUser("bob", domain.RoleUser),
	}
	return f
}

func (f *fixture) createTicket(t *testing.T, actor *domain.User) *domain.Ticket {
	t.Helper()
	detail, err := f.tickets.CreateTicket(context.Background(), actor, TicketCreateInput{
		Subject:     "Printer offline",
		Description: "The third floor printer does not respond.",
		IssueType:   domain.IssueTypeHardware,
	}, nil)
	require.NoError(t, err)
	return &detail.Ticket
}

func pdfFile(name string, size int) storage.File {
	return storage.File{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(size),
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

func ptr[T any](v T) *T { return &v }

func historyFor(f *fixture, ticketID string) []domain.TicketHistory {
	var out []domain.TicketHistory
	for _, entry := range f.store.HistoryEntries() {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out
}
