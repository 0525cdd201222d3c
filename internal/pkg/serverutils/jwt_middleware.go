package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"ragchat-client/internal/dto"
)

// NewJwtMiddleware validates HS256 bearer tokens and stores the caller in
// ctx.Locals("user_id"). An empty secret disables the check and every
// request runs as anonymousUser.
func NewJwtMiddleware(secret, anonymousUser string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			ctx.Locals("user_id", anonymousUser)
			return ctx.Next()
		}

		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Missing token"})
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid claims"})
		}

		userId, _ := claims["user_id"].(string)
		if userId == "" {
			userId, _ = claims.GetSubject()
		}
		if userId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid claims"})
		}

		ctx.Locals("user_id", userId)
		return ctx.Next()
	}
}
