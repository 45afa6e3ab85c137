package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/solidario/estoque/auth"
)

// ErrorHandler maps rich errors to the JSON error contract the SPA
// consumes: {"message": "..."} plus the matching HTTP status.
func ErrorHandler(logger auth.Logger, debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Erro interno do servidor"

		var rich *errors.Error
		if errors.As(err, &rich) {
			status = statusFor(rich)
			message = rich.Message
			if debug {
				logger.Debug("request error: %s", print.MaybePrettyJSON(rich))
			}
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
			message = fe.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Method(), c.Path(), err)
		}

		return c.Status(status).JSON(fiber.Map{"message": message})
	}
}

func statusFor(err *errors.Error) int {
	if err.Code != 0 {
		switch err.Code {
		case errors.CodeBadRequest:
			return fiber.StatusBadRequest
		case errors.CodeUnauthorized:
			return fiber.StatusUnauthorized
		case errors.CodeForbidden:
			return fiber.StatusForbidden
		case errors.CodeNotFound:
			return fiber.StatusNotFound
		case errors.CodeConflict:
			return fiber.StatusConflict
		}
	}

	switch err.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
