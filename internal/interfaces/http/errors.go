package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-inventario/internal/application/dto"
	"github.com/jhoicas/erp-inventario/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings se evalúa en orden; el primer errors.Is que coincide define la respuesta.
var errorMappings = []errorMapping{
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientLotStock, fiber.StatusConflict, "INSUFFICIENT_LOT_STOCK"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicateSerial, fiber.StatusConflict, "DUPLICATE_SERIAL"},
	{domain.ErrSerialNotFound, fiber.StatusConflict, "SERIAL_NOT_FOUND"},
	{domain.ErrSerialDepleted, fiber.StatusConflict, "SERIAL_DEPLETED"},
	{domain.ErrAlreadyCancelled, fiber.StatusConflict, "ALREADY_CANCELLED"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidOperation, fiber.StatusUnprocessableEntity, "INVALID_OPERATION"},
}

// writeError traduce errores de dominio a respuestas HTTP; el resto es 500 y se registra.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	l := loggerFrom(c)
	l.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
