package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos directos de inventario
// (ENTRY, EXIT, ADJUSTMENT, TRANSFER) a través del libro de saldos, con
// bloqueo de fila y Commit/Rollback. Los movimientos directos no participan
// del ciclo solicitud/recepción: nunca dejan cantidad pendiente.
type RegisterMovementUseCase struct {
	ledger     *Ledger
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(ledger *Ledger, products repository.ProductRepository, warehouses repository.WarehouseRepository) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{ledger: ledger, products: products, warehouses: warehouses}
}

// MovementInput entrada para registrar un movimiento directo.
// ENTRY/EXIT/ADJUSTMENT: ProductID, LocationID, Quantity (ADJUSTMENT admite
// negativo). TRANSFER: ProductID, FromLocationID, ToLocationID, Quantity.
// ReservedDelta solo aplica a EXIT (salida de stock ya reservado).
type MovementInput struct {
	TenantID       string
	UserID         string
	ProductID      string
	BatchID        *string
	LocationID     string
	FromLocationID string
	ToLocationID   string
	Type           string
	Quantity       decimal.Decimal
	ReservedDelta  decimal.Decimal
}

// RegisterMovement valida tipo, producto y ubicaciones, y aplica el movimiento
// por el libro en una sola transacción.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	switch in.Type {
	case entity.ReferenceTypeEntry, entity.ReferenceTypeExit:
		if in.ProductID == "" || in.LocationID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	case entity.ReferenceTypeAdjustment:
		if in.ProductID == "" || in.LocationID == "" || in.Quantity.IsZero() {
			return nil, domain.ErrInvalidInput
		}
	case entity.ReferenceTypeTransfer:
		if in.ProductID == "" || in.FromLocationID == "" || in.ToLocationID == "" {
			return nil, domain.ErrInvalidInput
		}
		if in.FromLocationID == in.ToLocationID || !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.TenantID != in.TenantID {
		return nil, domain.ErrForbidden
	}
	if err := uc.validateLocations(ctx, in); err != nil {
		return nil, err
	}

	apply := ApplyMovementInput{
		TenantID:  in.TenantID,
		ProductID: in.ProductID,
		BatchID:   in.BatchID,
		CreatedBy: in.UserID,
	}
	switch in.Type {
	case entity.ReferenceTypeEntry:
		loc := in.LocationID
		apply.ToLocationID = &loc
		apply.Quantity = in.Quantity
		apply.ReferenceType = entity.ReferenceTypeEntry
	case entity.ReferenceTypeExit:
		loc := in.LocationID
		apply.FromLocationID = &loc
		apply.Quantity = in.Quantity
		apply.ReservedDelta = in.ReservedDelta
		apply.ReferenceType = entity.ReferenceTypeExit
	case entity.ReferenceTypeAdjustment:
		loc := in.LocationID
		apply.ReferenceType = entity.ReferenceTypeAdjustment
		if in.Quantity.GreaterThan(decimal.Zero) {
			apply.ToLocationID = &loc
			apply.Quantity = in.Quantity
		} else {
			apply.FromLocationID = &loc
			apply.Quantity = in.Quantity.Neg()
		}
	case entity.ReferenceTypeTransfer:
		from := in.FromLocationID
		to := in.ToLocationID
		apply.FromLocationID = &from
		apply.ToLocationID = &to
		apply.Quantity = in.Quantity
		apply.ReferenceType = entity.ReferenceTypeTransfer
	}
	return uc.ledger.ApplyMovement(ctx, apply)
}

// validateLocations verifica que las ubicaciones existan y sean del tenant.
func (uc *RegisterMovementUseCase) validateLocations(ctx context.Context, in MovementInput) error {
	ids := make([]string, 0, 2)
	if in.Type == entity.ReferenceTypeTransfer {
		ids = append(ids, in.FromLocationID, in.ToLocationID)
	} else {
		ids = append(ids, in.LocationID)
	}
	for _, id := range ids {
		loc, err := uc.warehouses.GetLocation(ctx, in.TenantID, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
