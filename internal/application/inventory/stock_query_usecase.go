package inventory

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura sobre saldos y kardex. No abre
// transacciones: lee directo del pool.
type StockQueryUseCase struct {
	balances  repository.BalanceRepository
	movements repository.StockMovementRepository
}

func NewStockQueryUseCase(balances repository.BalanceRepository, movements repository.StockMovementRepository) *StockQueryUseCase {
	return &StockQueryUseCase{balances: balances, movements: movements}
}

// ListBalancesByLocation saldos de una ubicación.
func (uc *StockQueryUseCase) ListBalancesByLocation(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.Balance, error) {
	if tenantID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.balances.ListByLocation(ctx, tenantID, locationID, limit, offset)
}

// ListBalancesByProduct saldos de un producto en todas las ubicaciones.
func (uc *StockQueryUseCase) ListBalancesByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Balance, error) {
	if tenantID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.balances.ListByProduct(ctx, tenantID, productID)
}

// ListMovements kardex del tenant con filtros opcionales.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movements.List(ctx, tenantID, filter)
}

// GetMovement devuelve un movimiento del libro.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	if tenantID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.movements.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}
