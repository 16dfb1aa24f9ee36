package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de devolución contra una solicitud despachada.
const (
	ReturnModeAll     = "ALL"     // revierte todo lo pendiente
	ReturnModePartial = "PARTIAL" // revierte cantidades indicadas por movimiento
)

// StockReturn registra una devolución de mercancía: ya sea la reversa (total o
// parcial) de despachos de una solicitud, o una devolución directa a una
// ubicación con motivo libre. Inmutable una vez creada.
type StockReturn struct {
	ID           string
	TenantID     string
	ToLocationID string  // donde queda la mercancía devuelta
	RequestID    *string // nil = devolución directa (sin solicitud)
	Reason       string
	EvidenceURL  *string // foto opcional
	CreatedAt    time.Time
	CreatedBy    string
	Items        []*StockReturnItem
}

// StockReturnItem es una línea de la devolución. OutMovementID referencia el
// movimiento de salida original cuando la devolución revierte un despacho
// (decrementa su cantidad pendiente).
type StockReturnItem struct {
	ID             string
	ReturnID       string
	ProductID      string
	BatchID        *string
	OutMovementID  *string
	PresentationID *string
	Quantity       decimal.Decimal
}
