package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de traslado.
const (
	RequestStatusOpen      = "OPEN"      // abierta, admite despachos
	RequestStatusFulfilled = "FULFILLED" // todos los ítems despachados
	RequestStatusCancelled = "CANCELLED" // cancelada (terminal, solo desde OPEN sin despachos)
)

// Estados de confirmación de recepción (aplican una vez FULFILLED).
const (
	ConfirmationPending  = "PENDING"
	ConfirmationAccepted = "ACCEPTED"
	ConfirmationRejected = "REJECTED"
)

// MovementRequest es la solicitud de una bodega destino pidiendo stock.
// Ciclo de vida: OPEN -> FULFILLED | CANCELLED; una vez FULFILLED la
// confirmación avanza PENDING -> ACCEPTED | REJECTED según la recepción
// o devolución del destino.
type MovementRequest struct {
	ID                 string
	TenantID           string
	WarehouseID        string // bodega destino
	LocationID         string // ubicación de recepción en la bodega destino
	RequestedCity      string
	RequestedByName    string
	Status             string
	ConfirmationStatus string
	Version            int64
	CreatedAt          time.Time
	FulfilledAt        *time.Time
	Items              []*MovementRequestItem
}

// MovementRequestItem es una línea de la solicitud: producto y cantidad pedida
// en unidades base, con presentación opcional (caja, blíster) informativa.
// RemainingQuantity baja con cada despacho parcial; 0 = ítem completo.
type MovementRequestItem struct {
	ID                   string
	RequestID            string
	ProductID            string
	PresentationID       *string
	PresentationQuantity *decimal.Decimal // cantidad en unidades de presentación
	RequestedQuantity    decimal.Decimal  // unidades base
	RemainingQuantity    decimal.Decimal
	CreatedAt            time.Time
}

// IsOpen indica si la solicitud admite despachos.
func (r *MovementRequest) IsOpen() bool { return r.Status == RequestStatusOpen }

// AllItemsShipped indica si todos los ítems quedaron con remanente cero.
func (r *MovementRequest) AllItemsShipped() bool {
	for _, it := range r.Items {
		if it.RemainingQuantity.GreaterThan(decimal.Zero) {
			return false
		}
	}
	return len(r.Items) > 0
}
