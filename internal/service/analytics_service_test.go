package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/domain"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("redis down")
	}
	val, ok := m.entries[key]
	return val, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[key] = value
	m.sets++
	return nil
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createTicket(t, f.alice)
	f.createTicket(t, f.bob)
	_, err := f.tickets.AssignTicket(ctx, f.alice, first.ID, f.support.ID)
	require.NoError(t, err)
	_, err = f.tickets.UpdateStatus(ctx, f.support, first.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	svc := NewAnalyticsService(AnalyticsDependencies{AnalyticsRepo: f.store.Analytics()})

	dashboard, err := svc.Dashboard(ctx, f.support)
	require.NoError(t, err)
	assert.Len(t, dashboard.Global.ByStatus, 7)
	assert.Equal(t, 1, dashboard.Global.ByStatus["open"])
	assert.Equal(t, 1, dashboard.Global.ByStatus["resolved"])
	assert.Equal(t, 0, dashboard.Global.ByStatus["approved"])
	assert.Equal(t, 2, dashboard.Global.ByPriority["medium"])
	assert.Equal(t, 2, dashboard.Global.ByIssueType["hardware"])
	assert.Equal(t, 2, dashboard.Global.OpenedToday)
	assert.Equal(t, 2, dashboard.Global.Total)
	require.NotNil(t, dashboard.AssignedToMe)
	assert.Equal(t, 1, dashboard.AssignedToMe.Total)
	assert.Equal(t, 1, dashboard.AssignedToMe.ByStatus["resolved"])

	adminView, err := svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Nil(t, adminView.AssignedToMe)

	_, err = svc.Dashboard(ctx, f.alice)
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))
}

func TestDashboardUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTicket(t, f.alice)

	cache := &memoryCache{}
	svc := NewAnalyticsService(AnalyticsDependencies{AnalyticsRepo: f.store.Analytics(), Cache: cache, CacheTTL: time.Minute})

	first, err := svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	f.createTicket(t, f.bob)
	second, err := svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, first.Global.Total, second.Global.Total, "served from cache")
	assert.Equal(t, 1, cache.sets)

	cache.failGet = true
	third, err := svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Global.Total, "cache errors fall through to the database")
}
