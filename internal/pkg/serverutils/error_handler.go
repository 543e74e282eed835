package serverutils

import (
	"errors"
	"strings"

	"rag-chatbot-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into the JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps an error to its HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case apperror.IsNotFound(err):
		return fiber.StatusNotFound, trimSentinel(err, apperror.ErrNotFound)
	case apperror.IsValidation(err), apperror.IsParse(err):
		return fiber.StatusBadRequest, trimSentinel(err, apperror.ErrValidation, apperror.ErrParse)
	case apperror.IsUpstream(err):
		return fiber.StatusBadGateway, "upstream service unavailable"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

// trimSentinel keeps the detail after the "<sentinel>: " marker that apperror
// helpers prepend.
func trimSentinel(err error, sentinels ...error) string {
	msg := err.Error()
	for _, s := range sentinels {
		if i := strings.Index(msg, s.Error()+": "); i >= 0 {
			return msg[i+len(s.Error())+2:]
		}
	}
	return msg
}
