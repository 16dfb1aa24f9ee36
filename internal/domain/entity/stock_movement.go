package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de referencia que originan un movimiento de stock.
const (
	ReferenceTypeRequestFulfillment = "REQUEST_FULFILLMENT" // despacho contra solicitud de traslado
	ReferenceTypeReturn             = "RETURN"              // devolución (reversa)
	ReferenceTypeEntry              = "ENTRY"               // entrada directa
	ReferenceTypeExit               = "EXIT"                // salida directa
	ReferenceTypeAdjustment         = "ADJUSTMENT"          // ajuste de inventario
	ReferenceTypeTransfer           = "TRANSFER"            // traslado directo entre ubicaciones
	ReferenceTypeSaleReservation    = "SALE_RESERVATION"    // reserva por venta
)

// StockMovement es una entrada inmutable del libro de inventario: una cantidad
// de un producto (y lote opcional) movida desde una ubicación origen opcional
// hacia una ubicación destino opcional.
//
// PendingQuantity aplica solo a despachos contra solicitud: arranca igual a
// Quantity y baja a medida que el destino recibe o devuelve. Es el único campo
// mutable; todo lo demás queda fijo al crearse la fila.
type StockMovement struct {
	ID              string
	TenantID        string
	ProductID       string
	BatchID         *string
	FromLocationID  *string // nil = entrada pura
	ToLocationID    *string // nil = salida pura
	Quantity        decimal.Decimal // siempre positiva
	PendingQuantity decimal.Decimal // 0 <= pending <= quantity
	ReferenceType   string
	ReferenceID     *string // ID de la solicitud, devolución, etc.
	Version         int64
	CreatedAt       time.Time
	CreatedBy       string // UserID del actor
}

// IsPending indica si al movimiento le queda cantidad por conciliar
// (recibir o devolver) en el destino.
func (m *StockMovement) IsPending() bool {
	return m.PendingQuantity.GreaterThan(decimal.Zero)
}
