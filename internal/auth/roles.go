package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TahjibNil75/trackIT/internal/domain"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// RequireRoles ensures the principal holds one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return ErrForbidden
		}
		return c.Next()
	}
}

// RequirePrivileged ensures the principal holds a privileged role.
func RequirePrivileged() fiber.Handler {
	return RequireRoles(domain.RoleAdmin, domain.RoleManager, domain.RoleITSupport)
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return RequireRoles()
}
