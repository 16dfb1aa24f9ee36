package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// MovementFilter filtros para el kardex de movimientos.
type MovementFilter struct {
	ProductID  string
	LocationID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// StockMovementRepository define el puerto para el libro de movimientos.
// Las filas son inmutables salvo PendingQuantity, que solo decrece.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea la fila del movimiento (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.StockMovement, error)
	// ListByReference lista los movimientos originados por una operación
	// (ej. los despachos de una solicitud), en orden de creación.
	ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error)
	// DecrementPending baja la cantidad pendiente condicionando por la versión
	// leída; ErrConcurrentModification si otra operación ganó la escritura.
	DecrementPending(ctx context.Context, tenantID, id string, newPending decimal.Decimal, version int64) error
	// List kardex por tenant con filtros de producto/ubicación/fechas.
	List(ctx context.Context, tenantID string, filter MovementFilter) ([]*entity.StockMovement, error)
}
