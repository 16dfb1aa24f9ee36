package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// Máquina de estados de la solicitud de traslado (reglas puras).
// OPEN -> FULFILLED (todos los ítems despachados) | CANCELLED (sin despachos).
// Una vez FULFILLED: PENDING -> ACCEPTED (recepción) | REJECTED (devolución).

// ShipmentMatch es la cantidad despachada aplicada a un ítem de la solicitud.
type ShipmentMatch struct {
	ItemID   string
	Quantity decimal.Decimal
}

// ValidateNewItems valida los ítems de una solicitud nueva: al menos uno,
// producto presente y cantidad pedida > 0.
func ValidateNewItems(items []*entity.MovementRequestItem) error {
	if len(items) == 0 {
		return domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.ProductID == "" || !it.RequestedQuantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if it.PresentationQuantity != nil && !it.PresentationQuantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Cancel marca la solicitud como cancelada. Solo permitido mientras está OPEN
// y sin ningún despacho registrado (hasShipments).
func Cancel(req *entity.MovementRequest, hasShipments bool) error {
	if req.Status != entity.RequestStatusOpen || hasShipments {
		return domain.ErrInvalidState
	}
	req.Status = entity.RequestStatusCancelled
	return nil
}

// RecordShipment descuenta las cantidades despachadas del remanente de cada
// ítem. Un despacho que exceda el remanente falla con ErrOverShipment sin
// aplicar nada (el caller descarta la solicitud mutada al hacer rollback).
// Si todos los ítems quedan en cero, la solicitud pasa a FULFILLED con
// confirmación PENDING y se estampa FulfilledAt.
func RecordShipment(req *entity.MovementRequest, matches []ShipmentMatch, now time.Time) error {
	if req.Status != entity.RequestStatusOpen {
		return domain.ErrInvalidState
	}
	if len(matches) == 0 {
		return domain.ErrInvalidInput
	}
	byID := make(map[string]*entity.MovementRequestItem, len(req.Items))
	for _, it := range req.Items {
		byID[it.ID] = it
	}
	for _, m := range matches {
		it, ok := byID[m.ItemID]
		if !ok {
			return domain.ErrNotFound
		}
		if !m.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if m.Quantity.GreaterThan(it.RemainingQuantity) {
			return domain.ErrOverShipment
		}
		it.RemainingQuantity = it.RemainingQuantity.Sub(m.Quantity)
	}
	if req.AllItemsShipped() {
		req.Status = entity.RequestStatusFulfilled
		req.ConfirmationStatus = entity.ConfirmationPending
		fulfilledAt := now
		req.FulfilledAt = &fulfilledAt
	}
	return nil
}
