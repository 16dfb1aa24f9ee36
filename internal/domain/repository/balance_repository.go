package repository

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// BalanceRepository define el puerto para los saldos de inventario por
// (tenant, producto, lote, ubicación). Las escrituras condicionan por versión
// (bloqueo optimista); dentro de transacciones se usa GetForUpdate.
type BalanceRepository interface {
	// Get devuelve el saldo; si no existe la fila devuelve un saldo en cero
	// (no persistido) con Version 0.
	Get(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error)
	// Save inserta la fila si Version == 0, o la actualiza condicionando por la
	// versión leída; devuelve ErrConcurrentModification si no coincide.
	Save(ctx context.Context, balance *entity.Balance) error
	// ListByLocation lista los saldos de una ubicación.
	ListByLocation(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.Balance, error)
	// ListByProduct lista los saldos de un producto en todas las ubicaciones.
	ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Balance, error)
}
