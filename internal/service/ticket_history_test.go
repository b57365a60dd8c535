package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/domain"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

func TestListHistoryPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.alice)

	for i := 0; i < 11; i++ {
		_, err := f.tickets.UpdateTicket(ctx, f.alice, ticket.ID, domain.TicketUpdate{
			Subject: ptr(fmt.Sprintf("Printer offline #%d", i)),
		}, nil)
		require.NoError(t, err)
	}

	page, err := f.tickets.ListHistory(ctx, f.admin, HistoryQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, domain.HistoryActionCreated, page.Items[1].Action, "oldest entry is last")

	first, err := f.tickets.ListHistory(ctx, f.admin, HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, first.Items, 10)
	assert.Equal(t, "Printer offline #10", first.Items[0].NewValue)
}

func TestListHistoryScopesNonPrivilegedActors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceTicket := f.createTicket(t, f.alice)
	bobTicket := f.createTicket(t, f.bob)

	_, err := f.tickets.AssignTicket(ctx, f.alice, aliceTicket.ID, f.bob.ID)
	require.NoError(t, err)

	page, err := f.tickets.ListHistory(ctx, f.bob, HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, bobTicket.ID, page.Items[0].TicketID)

	page, err = f.tickets.ListHistory(ctx, f.bob, HistoryQuery{TicketID: &aliceTicket.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestListHistoryFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createTicket(t, f.alice)
	f.createTicket(t, f.bob)

	_, err := f.tickets.UpdateStatus(ctx, f.support, first.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	byStatus, err := f.tickets.ListHistory(ctx, f.manager, HistoryQuery{Status: ptr(domain.TicketStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, 2, byStatus.Total)

	byActor, err := f.tickets.ListHistory(ctx, f.manager, HistoryQuery{ChangedBy: &f.support.ID})
	require.NoError(t, err)
	require.Equal(t, 1, byActor.Total)
	assert.Equal(t, "status_changed", byActor.Items[0].Action)

	_, err = f.tickets.ListHistory(ctx, f.manager, HistoryQuery{Page: -1})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestListHistoryRejectsMalformedFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets.ListHistory(ctx, f.manager, HistoryQuery{TicketID: ptr("abc"), ChangedBy: ptr("someone")})
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "ticket_id")
	assert.Contains(t, domainErr.Details, "changed_by")
}

func TestListHistoryRejectsOverflowingPage(t *testing.T) {
	f := newFixture(t)
	f.createTicket(t, f.alice)

	_, err := f.tickets.ListHistory(context.Background(), f.admin, HistoryQuery{Page: math.MaxInt})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}
