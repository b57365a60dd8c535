package service

import (
	"context"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

const maxUserPageSize = 100

// UserService manages accounts on behalf of administrators.
type UserService struct {
	users repository.UserRepository
}

// UserListFilter describes listing parameters.
type UserListFilter struct {
	Role     *domain.Role
	IsActive *bool
	Page     int
	PageSize int
}

// UserPage is one page of users.
type UserPage struct {
	Users    []domain.User
	Total    int
	Page     int
	PageSize int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// GetUser fetches one account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return loadUser(ctx, s.users, id)
}

// ListUsers returns a filtered, paginated list of accounts.
func (s *UserService) ListUsers(ctx context.Context, filter UserListFilter) (*UserPage, error) {
	errs := fieldErrors{}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 10
	}
	if filter.Page < 1 {
		errs.add("page", "must be at least 1")
	}
	if filter.PageSize < 1 || filter.PageSize > maxUserPageSize {
		errs.add("page_size", "must be between 1 and 100")
	}
	if filter.Role != nil && !filter.Role.Valid() {
		errs.add("role", "unknown role")
	}
	if filter.PageSize >= 1 && filter.Page > maxPage(filter.PageSize) {
		errs.add("page", "out of range")
	}
	if err := errs.err("invalid user filter"); err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     filter.Role,
		IsActive: filter.IsActive,
		Limit:    filter.PageSize,
		Offset:   (filter.Page - 1) * filter.PageSize,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return &UserPage{Users: users, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// UpdateRole changes a user's role. Admin accounts cannot be changed.
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": "must be one of user, admin, it_support, manager"})
	}
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("Cannot change role of an ADMIN user.")
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateStatus activates or deactivates a user. Admin accounts cannot be changed.
func (s *UserService) UpdateStatus(ctx context.Context, actor *domain.User, userID string, isActive bool) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("Cannot change status of an ADMIN user.")
	}

	user.IsActive = isActive
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
