package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/pkg/apperror"
)

// ErrorHandler renders every failure as {"error": "..."}, the shape the
// chat client reads its RequestFailed message from.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := constant.UnknownErrorMessage

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
		message = fe.Message
	case apperror.Is(err, apperror.KindInvalid):
		status = fiber.StatusBadRequest
		message = apperror.Message(err)
	case apperror.Is(err, apperror.KindNotFound), apperror.Is(err, apperror.KindEmptyResult):
		status = fiber.StatusNotFound
		message = apperror.Message(err)
	case err != nil:
		message = err.Error()
	}

	return ctx.Status(status).JSON(dto.ErrorResponse{Error: message})
}
