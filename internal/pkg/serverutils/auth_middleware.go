package serverutils

import (
	"strings"

	"clara-backend/internal/entity"
	"clara-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalsUser  = "user"
	LocalsToken = "token"
)

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return authHeader[7:]
}

// RequireAuth resolves the bearer token through the auth service, which
// checks the live session row rather than only the JWT signature. The
// resolved user lands in ctx.Locals.
func RequireAuth(authService service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusUnauthorized,
				"message": "missing bearer token",
			})
		}

		user, err := authService.Validate(ctx.Context(), tokenStr)
		if err != nil {
			status := StatusFromError(err)
			return ctx.Status(status).JSON(fiber.Map{
				"success": false,
				"code":    status,
				"message": err.Error(),
			})
		}

		ctx.Locals(LocalsUser, user)
		ctx.Locals(LocalsToken, tokenStr)
		return ctx.Next()
	}
}

// OptionalAuth resolves the user when a valid token accompanies the request
// and continues anonymously otherwise.
func OptionalAuth(authService service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerToken(ctx)
		if tokenStr != "" {
			if user, err := authService.Validate(ctx.Context(), tokenStr); err == nil {
				ctx.Locals(LocalsUser, user)
				ctx.Locals(LocalsToken, tokenStr)
			}
		}
		return ctx.Next()
	}
}

// CurrentUser pulls the authenticated user out of the request context; nil
// when the request is anonymous.
func CurrentUser(ctx *fiber.Ctx) *entity.User {
	user, _ := ctx.Locals(LocalsUser).(*entity.User)
	return user
}
