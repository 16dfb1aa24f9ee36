package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestItemRequest línea de una solicitud de traslado nueva. La cantidad va
// en unidades base (quantity) o en presentación (presentation_id +
// presentation_quantity, convertida con el factor del catálogo).
type RequestItemRequest struct {
	ProductID            string          `json:"product_id"`
	PresentationID       string          `json:"presentation_id,omitempty"`
	PresentationQuantity decimal.Decimal `json:"presentation_quantity,omitempty"`
	Quantity             decimal.Decimal `json:"quantity,omitempty"`
}

// CreateMovementRequestRequest body para POST /api/movement-requests.
type CreateMovementRequestRequest struct {
	WarehouseID     string               `json:"warehouse_id"`
	RequestedCity   string               `json:"requested_city"`
	RequestedByName string               `json:"requested_by_name"`
	Items           []RequestItemRequest `json:"items"`
}

// PickedLineRequest línea preparada para POST /:id/fulfill. request_item_id es
// la llave estable; product_id o sku cruzan por identidad cuando falta.
type PickedLineRequest struct {
	RequestItemID string          `json:"request_item_id,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
	SKU           string          `json:"sku,omitempty"`
	BatchID       *string         `json:"batch_id,omitempty"`
	LocationID    string          `json:"location_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// FulfillRequestRequest body para POST /api/movement-requests/:id/fulfill.
type FulfillRequestRequest struct {
	Lines []PickedLineRequest `json:"lines"`
}

// ReturnItemRequest reversa parcial contra un movimiento de salida.
type ReturnItemRequest struct {
	OutMovementID string          `json:"out_movement_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// ReturnShipmentRequest body para POST /api/movement-requests/:id/return.
type ReturnShipmentRequest struct {
	Mode        string              `json:"mode"` // ALL | PARTIAL
	Reason      string              `json:"reason"`
	EvidenceURL *string             `json:"evidence_url,omitempty"`
	Items       []ReturnItemRequest `json:"items,omitempty"`
}

// StandaloneReturnItemRequest línea de devolución directa a stock.
type StandaloneReturnItemRequest struct {
	ProductID      string          `json:"product_id"`
	BatchID        *string         `json:"batch_id,omitempty"`
	PresentationID *string         `json:"presentation_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// CreateStandaloneReturnRequest body para POST /api/returns.
type CreateStandaloneReturnRequest struct {
	ToLocationID string                        `json:"to_location_id"`
	Reason       string                        `json:"reason"`
	EvidenceURL  *string                       `json:"evidence_url,omitempty"`
	Items        []StandaloneReturnItemRequest `json:"items"`
}

// MovementRequestItemResponse ítem de solicitud en respuestas.
type MovementRequestItemResponse struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"product_id"`
	PresentationID       *string          `json:"presentation_id,omitempty"`
	PresentationQuantity *decimal.Decimal `json:"presentation_quantity,omitempty"`
	RequestedQuantity    decimal.Decimal  `json:"requested_quantity"`
	RemainingQuantity    decimal.Decimal  `json:"remaining_quantity"`
}

// MovementRequestResponse solicitud de traslado en respuestas.
type MovementRequestResponse struct {
	ID                 string                        `json:"id"`
	WarehouseID        string                        `json:"warehouse_id"`
	LocationID         string                        `json:"location_id"`
	RequestedCity      string                        `json:"requested_city"`
	RequestedByName    string                        `json:"requested_by_name"`
	Status             string                        `json:"status"`
	ConfirmationStatus string                        `json:"confirmation_status"`
	CreatedAt          time.Time                     `json:"created_at"`
	FulfilledAt        *time.Time                    `json:"fulfilled_at,omitempty"`
	Items              []MovementRequestItemResponse `json:"items"`
}

// MovementRequestListResponse lista paginada de solicitudes.
type MovementRequestListResponse struct {
	Items []MovementRequestResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// FulfillResponse respuesta de un despacho: solicitud actualizada y
// movimientos creados.
type FulfillResponse struct {
	Request   MovementRequestResponse `json:"request"`
	Movements []StockMovementResponse `json:"movements"`
}

// StockReturnItemResponse línea de devolución en respuestas.
type StockReturnItemResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	BatchID       *string         `json:"batch_id,omitempty"`
	OutMovementID *string         `json:"out_movement_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// StockReturnResponse devolución en respuestas.
type StockReturnResponse struct {
	ID           string                    `json:"id"`
	RequestID    *string                   `json:"request_id,omitempty"`
	ToLocationID string                    `json:"to_location_id"`
	Reason       string                    `json:"reason"`
	EvidenceURL  *string                   `json:"evidence_url,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	Items        []StockReturnItemResponse `json:"items"`
}

// ReturnShipmentResponse respuesta de una devolución contra solicitud.
type ReturnShipmentResponse struct {
	Request MovementRequestResponse `json:"request"`
	Return  StockReturnResponse     `json:"return"`
}
