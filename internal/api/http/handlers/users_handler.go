package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/TahjibNil75/trackIT/internal/api/dto"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/service"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// UsersHandler exposes account management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// ListUsers GET /users?role=&is_active=&page=&page_size=.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	filter := service.UserListFilter{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 10),
	}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	if active := c.Query("is_active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			return apperrors.NewValidationError("invalid user filter", map[string]any{"is_active": "must be true or false"})
		}
		filter.IsActive = &parsed
	}
	return h.respondPage(c, filter)
}

// ListByRole GET /users/role/:role.
func (h *UsersHandler) ListByRole(c *fiber.Ctx) error {
	role := domain.Role(c.Params("role"))
	return h.respondPage(c, service.UserListFilter{
		Role:     &role,
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 10),
	})
}

func (h *UsersHandler) respondPage(c *fiber.Ctx, filter service.UserListFilter) error {
	page, err := h.users.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserPageResponse{
		Users:    page.Users,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}})
}

// UpdateRole PUT /users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// UpdateStatus PUT /users/:id/status.
func (h *UsersHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return apperrors.NewValidationError("is_active required", map[string]any{"is_active": "required"})
	}
	user, err := h.users.UpdateStatus(c.UserContext(), actor, c.Params("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}
