package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// ENTRY/EXIT/ADJUSTMENT usan location_id; TRANSFER usa from/to.
type RegisterMovementRequest struct {
	ProductID      string          `json:"product_id"`
	BatchID        *string         `json:"batch_id,omitempty"`
	LocationID     string          `json:"location_id,omitempty"`
	FromLocationID string          `json:"from_location_id,omitempty"`
	ToLocationID   string          `json:"to_location_id,omitempty"`
	Type           string          `json:"type"` // ENTRY, EXIT, ADJUSTMENT, TRANSFER
	Quantity       decimal.Decimal `json:"quantity"`
	ReservedDelta  decimal.Decimal `json:"reserved_delta,omitempty"` // EXIT de stock reservado
}

// StockMovementResponse movimiento del libro en respuestas.
type StockMovementResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	BatchID         *string         `json:"batch_id,omitempty"`
	FromLocationID  *string         `json:"from_location_id,omitempty"`
	ToLocationID    *string         `json:"to_location_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	PendingQuantity decimal.Decimal `json:"pending_quantity"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     *string         `json:"reference_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by,omitempty"`
}

// BalanceResponse saldo de inventario en respuestas.
type BalanceResponse struct {
	ProductID         string          `json:"product_id"`
	BatchID           *string         `json:"batch_id,omitempty"`
	LocationID        string          `json:"location_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// ReservationRequest body para reservar o liberar stock.
type ReservationRequest struct {
	ProductID  string          `json:"product_id"`
	BatchID    *string         `json:"batch_id,omitempty"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}
