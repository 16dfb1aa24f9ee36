package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// MovementRequestUseCase crea, cancela y consulta solicitudes de traslado.
type MovementRequestUseCase struct {
	txRunner   TxRunner
	requests   repository.MovementRequestRepository
	movements  repository.StockMovementRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	sink       dominv.EventSink
}

// NewMovementRequestUseCase construye el caso de uso.
func NewMovementRequestUseCase(
	txRunner TxRunner,
	requests repository.MovementRequestRepository,
	movements repository.StockMovementRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	sink dominv.EventSink,
) *MovementRequestUseCase {
	return &MovementRequestUseCase{
		txRunner:   txRunner,
		requests:   requests,
		movements:  movements,
		products:   products,
		warehouses: warehouses,
		sink:       sink,
	}
}

// RequestItemInput línea de una solicitud nueva. La cantidad puede venir en
// unidades base (Quantity) o en unidades de presentación (PresentationID +
// PresentationQuantity); en ese caso se convierte con el factor del catálogo.
type RequestItemInput struct {
	ProductID            string
	PresentationID       string
	PresentationQuantity decimal.Decimal
	Quantity             decimal.Decimal
}

// CreateRequestInput entrada para crear una solicitud de traslado.
type CreateRequestInput struct {
	TenantID        string
	WarehouseID     string // bodega destino que pide el stock
	RequestedCity   string
	RequestedByName string
	Items           []RequestItemInput
}

// Create valida los datos de referencia, convierte presentaciones a unidades
// base y persiste la solicitud en estado OPEN con remanente = pedido.
func (uc *MovementRequestUseCase) Create(ctx context.Context, in CreateRequestInput) (*entity.MovementRequest, error) {
	if in.TenantID == "" || in.WarehouseID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	wh, err := uc.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	if wh.TenantID != in.TenantID {
		return nil, domain.ErrForbidden
	}
	loc, err := uc.warehouses.GetDefaultLocation(ctx, in.TenantID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	items := make([]*entity.MovementRequestItem, 0, len(in.Items))
	for _, it := range in.Items {
		product, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.TenantID != in.TenantID {
			return nil, domain.ErrForbidden
		}

		item := &entity.MovementRequestItem{
			ProductID:         it.ProductID,
			RequestedQuantity: it.Quantity,
			CreatedAt:         now,
		}
		if it.PresentationID != "" {
			pres, err := uc.products.GetPresentation(ctx, it.PresentationID)
			if err != nil {
				return nil, err
			}
			if pres == nil || pres.ProductID != it.ProductID {
				return nil, domain.ErrNotFound
			}
			presID := it.PresentationID
			presQty := it.PresentationQuantity
			item.PresentationID = &presID
			item.PresentationQuantity = &presQty
			// La cantidad pedida en unidades base sale del factor de conversión.
			item.RequestedQuantity = presQty.Mul(pres.Factor)
		}
		item.RemainingQuantity = item.RequestedQuantity
		items = append(items, item)
	}
	if err := dominv.ValidateNewItems(items); err != nil {
		return nil, err
	}

	request := &entity.MovementRequest{
		TenantID:           in.TenantID,
		WarehouseID:        in.WarehouseID,
		LocationID:         loc.ID,
		RequestedCity:      in.RequestedCity,
		RequestedByName:    in.RequestedByName,
		Status:             entity.RequestStatusOpen,
		ConfirmationStatus: entity.ConfirmationPending,
		CreatedAt:          now,
		Items:              items,
	}
	if err := uc.requests.Create(ctx, request); err != nil {
		return nil, err
	}
	uc.sink.Publish(ctx, dominv.NewEvent(dominv.EventMovementRequestCreated, in.TenantID, request.ID, map[string]any{
		"warehouse_id": in.WarehouseID,
		"items":        len(items),
	}))
	return request, nil
}

// Cancel cancela una solicitud OPEN sin despachos. La verificación de
// despachos y el cambio de estado ocurren en la misma transacción para que un
// despacho concurrente no se cuele entre la lectura y la escritura.
func (uc *MovementRequestUseCase) Cancel(ctx context.Context, tenantID, requestID string) (*entity.MovementRequest, error) {
	var request *entity.MovementRequest
	err := uc.txRunner.Run(ctx, func(
		_ repository.BalanceRepository,
		movementRepo repository.StockMovementRepository,
		requestRepo repository.MovementRequestRepository,
		_ repository.StockReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		shipments, err := movementRepo.ListByReference(ctx, tenantID, entity.ReferenceTypeRequestFulfillment, requestID)
		if err != nil {
			return err
		}
		if err := dominv.Cancel(req, len(shipments) > 0); err != nil {
			return err
		}
		if err := requestRepo.Update(ctx, req); err != nil {
			return err
		}
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.sink.Publish(ctx, dominv.NewEvent(dominv.EventMovementRequestCancelled, tenantID, requestID, nil))
	return request, nil
}

// GetByID devuelve la solicitud con sus ítems.
func (uc *MovementRequestUseCase) GetByID(ctx context.Context, tenantID, requestID string) (*entity.MovementRequest, error) {
	req, err := uc.requests.GetByID(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List lista solicitudes del tenant, opcionalmente filtradas por estado.
func (uc *MovementRequestUseCase) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.MovementRequest, error) {
	return uc.requests.List(ctx, tenantID, status, limit, offset)
}
