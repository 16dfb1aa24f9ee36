package repository

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// StockReturnRepository define el puerto para devoluciones (inmutables).
type StockReturnRepository interface {
	Create(ctx context.Context, stockReturn *entity.StockReturn) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockReturn, error)
	ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.StockReturn, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.StockReturn, error)
}
