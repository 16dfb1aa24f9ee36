package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// FulfillmentUseCase despacha un picking contra una solicitud de traslado:
// cruza las líneas preparadas con los ítems abiertos, mueve el stock por el
// libro (origen -> ubicación de recepción del destino) y descuenta los
// remanentes, todo en una sola transacción. Varias operaciones de despacho
// parciales sobre la misma solicitud OPEN son válidas.
type FulfillmentUseCase struct {
	txRunner TxRunner
	ledger   *Ledger
	products repository.ProductRepository
	sink     dominv.EventSink
}

// NewFulfillmentUseCase construye el caso de uso.
func NewFulfillmentUseCase(txRunner TxRunner, ledger *Ledger, products repository.ProductRepository, sink dominv.EventSink) *FulfillmentUseCase {
	return &FulfillmentUseCase{txRunner: txRunner, ledger: ledger, products: products, sink: sink}
}

// Fulfill aplica las líneas preparadas contra la solicitud. Cualquier línea
// sin ítem destino o que exceda el remanente rechaza la operación completa
// (ninguna línea se aplica a medias). Devuelve la solicitud actualizada y los
// movimientos de stock creados.
func (uc *FulfillmentUseCase) Fulfill(ctx context.Context, tenantID, requestID, userID string, lines []dominv.PickedLine) (*entity.MovementRequest, []*entity.StockMovement, error) {
	if tenantID == "" || requestID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if len(lines) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}

	var request *entity.MovementRequest
	var created []*entity.StockMovement
	var events []dominv.Event

	err := uc.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
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

		skuByProduct, err := uc.resolveSKUs(ctx, req, lines)
		if err != nil {
			return err
		}
		matches, err := dominv.MatchPickedLines(req, lines, skuByProduct)
		if err != nil {
			return err
		}

		now := time.Now()
		shipment := make([]dominv.ShipmentMatch, 0, len(matches))
		requestRef := req.ID
		destination := req.LocationID
		for _, m := range matches {
			origin := m.Line.LocationID
			movement, movEvents, err := uc.ledger.ApplyMovementInTx(ctx, balanceRepo, movementRepo, ApplyMovementInput{
				TenantID:       tenantID,
				ProductID:      m.Item.ProductID,
				BatchID:        m.Line.BatchID,
				FromLocationID: &origin,
				ToLocationID:   &destination,
				Quantity:       m.Line.Quantity,
				Pending:        true,
				ReferenceType:  entity.ReferenceTypeRequestFulfillment,
				ReferenceID:    &requestRef,
				CreatedBy:      userID,
			})
			if err != nil {
				return err
			}
			created = append(created, movement)
			events = append(events, movEvents...)
			shipment = append(shipment, dominv.ShipmentMatch{ItemID: m.Item.ID, Quantity: m.Line.Quantity})
		}

		if err := dominv.RecordShipment(req, shipment, now); err != nil {
			return err
		}
		if err := requestRepo.Update(ctx, req); err != nil {
			return err
		}
		if req.Status == entity.RequestStatusFulfilled {
			events = append(events, dominv.NewEvent(dominv.EventMovementRequestFulfilled, tenantID, req.ID, map[string]any{
				"warehouse_id": req.WarehouseID,
			}))
		}
		request = req
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.sink.Publish(ctx, events...)
	return request, created, nil
}

// resolveSKUs arma el mapa producto -> SKU solo cuando alguna línea cruza por
// identidad externa (sin llave estable ni producto).
func (uc *FulfillmentUseCase) resolveSKUs(ctx context.Context, req *entity.MovementRequest, lines []dominv.PickedLine) (map[string]string, error) {
	needed := false
	for _, l := range lines {
		if l.RequestItemID == "" && l.ProductID == "" && l.SKU != "" {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}
	skus := make(map[string]string, len(req.Items))
	for _, it := range req.Items {
		if _, ok := skus[it.ProductID]; ok {
			continue
		}
		product, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		skus[it.ProductID] = product.SKU
	}
	return skus, nil
}
