package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/observability"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

const dashboardCacheKey = "dashboard:global"

// DashboardCache stores serialized dashboard blocks.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TicketBreakdown counts tickets along each dashboard dimension.
type TicketBreakdown struct {
	ByStatus    map[string]int `json:"tickets_by_status"`
	ByPriority  map[string]int `json:"tickets_by_priority"`
	ByIssueType map[string]int `json:"tickets_by_issue_type"`
	OpenedToday int            `json:"opened_today"`
	Total       int            `json:"total"`
}

// Dashboard is the analytics view for privileged roles. AssignedToMe is set for
// it_support and manager.
type Dashboard struct {
	Global       TicketBreakdown  `json:"global"`
	AssignedToMe *TicketBreakdown `json:"assigned_to_me,omitempty"`
}

// AnalyticsService builds role-scoped dashboards.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	cache     DashboardCache
	cacheTTL  time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	AnalyticsRepo repository.AnalyticsRepository
	Cache         DashboardCache
	CacheTTL      time.Duration
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewAnalyticsService constructs the service. A nil cache or zero TTL disables caching.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		analytics: deps.AnalyticsRepo,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		metrics:   deps.Metrics,
		logger:    nopLogger(deps.Logger),
		now:       time.Now,
	}
}

// Dashboard returns ticket counts for a privileged actor.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	if !auth.IsPrivileged(actor) {
		return nil, auth.ErrForbidden
	}

	global, err := s.globalBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	dashboard := &Dashboard{Global: *global}

	if actor.Role == domain.RoleITSupport || actor.Role == domain.RoleManager {
		mine, err := s.breakdown(ctx, &actor.ID)
		if err != nil {
			return nil, err
		}
		dashboard.AssignedToMe = mine
	}
	return dashboard, nil
}

func (s *AnalyticsService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func (s *AnalyticsService) globalBreakdown(ctx context.Context) (*TicketBreakdown, error) {
	if s.cacheEnabled() {
		raw, ok, err := s.cache.Get(ctx, dashboardCacheKey)
		switch {
		case err != nil:
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		case ok:
			var cached TicketBreakdown
			decodeErr := json.Unmarshal(raw, &cached)
			if decodeErr == nil {
				s.metrics.RecordCacheLookup("dashboard", true)
				return &cached, nil
			}
			s.logger.Warn("dashboard cache entry corrupt", zap.Error(decodeErr))
		}
		s.metrics.RecordCacheLookup("dashboard", false)
	}

	global, err := s.breakdown(ctx, nil)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if raw, err := json.Marshal(global); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return global, nil
}

func (s *AnalyticsService) breakdown(ctx context.Context, assignee *string) (*TicketBreakdown, error) {
	byStatus, err := s.analytics.CountBy(ctx, repository.DimensionStatus, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.analytics.CountBy(ctx, repository.DimensionPriority, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byIssueType, err := s.analytics.CountBy(ctx, repository.DimensionIssueType, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	openedToday, err := s.analytics.CountCreatedSince(ctx, startOfDay, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &TicketBreakdown{
		ByStatus:    zeroFilled(byStatus, statusKeys()),
		ByPriority:  zeroFilled(byPriority, priorityKeys()),
		ByIssueType: zeroFilled(byIssueType, issueTypeKeys()),
		OpenedToday: openedToday,
	}
	for _, count := range result.ByStatus {
		result.Total += count
	}
	return result, nil
}

func zeroFilled(counts map[string]int, keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for _, key := range keys {
		out[key] = counts[key]
	}
	return out
}

func statusKeys() []string {
	keys := make([]string, len(domain.TicketStatuses))
	for i, status := range domain.TicketStatuses {
		keys[i] = string(status)
	}
	return keys
}

func priorityKeys() []string {
	keys := make([]string, len(domain.TicketPriorities))
	for i, priority := range domain.TicketPriorities {
		keys[i] = string(priority)
	}
	return keys
}

func issueTypeKeys() []string {
	keys := make([]string, len(domain.IssueTypes))
	for i, issueType := range domain.IssueTypes {
		keys[i] = string(issueType)
	}
	return keys
}
