package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/komplek-api/internal/application/dto"
	"github.com/jhoicas/komplek-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		verr *domain.ValidationError
		ierr *domain.ImmutableFieldError
		werr *domain.OutOfWindowError
	)
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: verr.Message, Field: verr.Field}
	case errors.As(err, &ierr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "IMMUTABLE_FIELD", Message: ierr.Error(), Field: ierr.Field}
	case errors.As(err, &werr):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "OUT_OF_WINDOW", Message: werr.Error(), Field: "period"}
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCreds), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrNotAuthorized):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrReferentialIntegrity):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "REFERENTIAL_INTEGRITY", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrUnbalancedLedger):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "UNBALANCED_LEDGER", Message: err.Error()}
	case errors.Is(err, domain.ErrTransientStore):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "store no disponible, intente más tarde"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
