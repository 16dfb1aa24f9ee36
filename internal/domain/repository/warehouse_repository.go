package repository

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para bodegas y sus
// ubicaciones de almacenamiento.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error)

	CreateLocation(ctx context.Context, location *entity.Location) error
	GetLocation(ctx context.Context, tenantID, id string) (*entity.Location, error)
	// GetDefaultLocation devuelve la ubicación de recepción de la bodega.
	GetDefaultLocation(ctx context.Context, tenantID, warehouseID string) (*entity.Location, error)
	ListLocations(ctx context.Context, tenantID, warehouseID string) ([]*entity.Location, error)
}
