package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa la existencia de un producto (y opcionalmente un lote)
// en una ubicación: cantidad física en mano y cantidad reservada.
// Invariante: 0 <= ReservedQuantity <= Quantity. Las filas en cero nunca se
// eliminan (historial/auditoría).
type Balance struct {
	ID               string
	TenantID         string
	ProductID        string
	BatchID          *string // nil = saldo sin lote
	LocationID       string
	Quantity         decimal.Decimal // cantidad en mano
	ReservedQuantity decimal.Decimal // comprometida, no despachable
	Version          int64           // bloqueo optimista
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AvailableQuantity devuelve la cantidad libre (en mano menos reservada).
func (b *Balance) AvailableQuantity() decimal.Decimal {
	return b.Quantity.Sub(b.ReservedQuantity)
}
