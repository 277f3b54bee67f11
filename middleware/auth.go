package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lab-booking/constants"
	userModel "lab-booking/models/user"
	"lab-booking/types"
	"lab-booking/utils"
)

// tokenFromRequest reads the session token from the auth cookie or a
// Bearer header.
func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(constants.AuthCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireAuth rejects unauthenticated requests with 401 and stores the
// verified claims, user id and role in locals.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Not authenticated",
			})
		}

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid or expired session",
			})
		}

		userID, ok := utils.ClaimUserID(claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid session claims",
			})
		}

		c.Locals(constants.LocalUser, claims)
		c.Locals(constants.LocalUserID, userID)
		c.Locals(constants.LocalRole, utils.ClaimRole(claims))
		return c.Next()
	}
}

// RequireAdmin rejects authenticated callers without an administrative
// role with 403. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(constants.LocalRole).(string)
		if role != userModel.RoleAdmin && role != userModel.RoleSuperAdmin {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id from locals.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(constants.LocalUserID).(uint)
	return id
}

// Role returns the authenticated user's role from locals.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(constants.LocalRole).(string)
	return role
}

// IsAdminRole reports whether role may access admin endpoints.
func IsAdminRole(role string) bool {
	return role == userModel.RoleAdmin || role == userModel.RoleSuperAdmin
}
