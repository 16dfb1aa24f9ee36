package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/domain"
)

// mapDomainError traduce errores centinela del dominio a respuestas HTTP.
// Errores no mapeados caen en 500 con el mensaje original.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInsufficientAvailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_AVAILABLE", Message: "stock disponible insuficiente (hay reservas)"})
	case errors.Is(err, domain.ErrOverShipment):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_SHIPMENT", Message: "la cantidad despachada excede el remanente solicitado"})
	case errors.Is(err, domain.ErrExcessReturn):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EXCESS_RETURN", Message: "la cantidad devuelta excede lo pendiente del movimiento"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "la solicitud no admite esta operación en su estado actual"})
	case errors.Is(err, domain.ErrNotFulfilled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_FULFILLED", Message: "la solicitud aún no está despachada por completo"})
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CONFIRMED", Message: "la recepción ya fue confirmada o rechazada"})
	case errors.Is(err, domain.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: "otra operación modificó el recurso; reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
