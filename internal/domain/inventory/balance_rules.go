package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// Reglas puras de mutación de saldos. Toda escritura de Balance pasa por aquí
// para que el invariante 0 <= reservado <= cantidad se valide en un solo lugar.
// La persistencia y las transacciones son responsabilidad de la capa de
// aplicación (Ledger).

// ApplyOutbound descuenta qty de la cantidad en mano y reservedDelta de la
// reserva. Falla con ErrInsufficientStock si la cantidad en mano quedaría
// negativa, y con ErrInsufficientAvailable si el disponible resultante
// (cantidad - reserva) quedaría negativo.
func ApplyOutbound(b *entity.Balance, qty, reservedDelta decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if reservedDelta.IsNegative() || reservedDelta.GreaterThan(b.ReservedQuantity) {
		return domain.ErrInvalidInput
	}
	newQty := b.Quantity.Sub(qty)
	if newQty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	newReserved := b.ReservedQuantity.Sub(reservedDelta)
	if newQty.Sub(newReserved).IsNegative() {
		return domain.ErrInsufficientAvailable
	}
	b.Quantity = newQty
	b.ReservedQuantity = newReserved
	b.UpdatedAt = now
	return nil
}

// ApplyInbound suma qty a la cantidad en mano del saldo destino.
func ApplyInbound(b *entity.Balance, qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	b.Quantity = b.Quantity.Add(qty)
	b.UpdatedAt = now
	return nil
}

// Reserve aumenta la reserva sin tocar la cantidad en mano. Falla con
// ErrInsufficientAvailable si amount excede el disponible.
func Reserve(b *entity.Balance, amount decimal.Decimal, now time.Time) error {
	if !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if amount.GreaterThan(b.AvailableQuantity()) {
		return domain.ErrInsufficientAvailable
	}
	b.ReservedQuantity = b.ReservedQuantity.Add(amount)
	b.UpdatedAt = now
	return nil
}

// Release disminuye la reserva. Si amount excede la reserva actual no falla:
// deja la reserva en cero y devuelve clamped=true para que el caller registre
// la anomalía de datos (la reserva nunca debió ser menor).
func Release(b *entity.Balance, amount decimal.Decimal, now time.Time) (clamped bool, err error) {
	if !amount.GreaterThan(decimal.Zero) {
		return false, domain.ErrInvalidInput
	}
	newReserved := b.ReservedQuantity.Sub(amount)
	if newReserved.IsNegative() {
		newReserved = decimal.Zero
		clamped = true
	}
	b.ReservedQuantity = newReserved
	b.UpdatedAt = now
	return clamped, nil
}
