package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrInvalidState = errors.New("operación no permitida en el estado actual")

	// Errores del libro de inventario (capacidad real de stock).
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientAvailable = errors.New("stock disponible insuficiente (reservas activas)")

	// Errores de conciliación de despachos y devoluciones.
	ErrOverShipment = errors.New("la cantidad despachada excede la cantidad pendiente del ítem")
	ErrExcessReturn = errors.New("la cantidad devuelta excede la cantidad pendiente del movimiento")

	// Errores del ciclo de recepción.
	ErrNotFulfilled     = errors.New("la solicitud aún no está completamente despachada")
	ErrAlreadyConfirmed = errors.New("la recepción de la solicitud ya fue confirmada o rechazada")

	// Conflicto de escritura concurrente (versión desactualizada); seguro reintentar.
	ErrConcurrentModification = errors.New("el registro fue modificado por otra operación, reintente")
)
