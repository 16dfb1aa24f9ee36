package repository

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos,
// presentaciones y lotes (datos de referencia del catálogo).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)

	CreatePresentation(ctx context.Context, presentation *entity.Presentation) error
	ListPresentations(ctx context.Context, productID string) ([]*entity.Presentation, error)
	GetPresentation(ctx context.Context, id string) (*entity.Presentation, error)

	CreateBatch(ctx context.Context, batch *entity.ProductBatch) error
	GetBatch(ctx context.Context, tenantID, id string) (*entity.ProductBatch, error)
	ListBatches(ctx context.Context, tenantID, productID string) ([]*entity.ProductBatch, error)
}
