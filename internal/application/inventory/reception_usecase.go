package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// ReceptionUseCase cierra el ciclo de una solicitud despachada: el destino
// confirma la recepción (acepta) o devuelve la mercancía (total o parcial).
// También procesa devoluciones directas sin solicitud asociada.
type ReceptionUseCase struct {
	txRunner   TxRunner
	ledger     *Ledger
	warehouses repository.WarehouseRepository
	sink       dominv.EventSink
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(txRunner TxRunner, ledger *Ledger, warehouses repository.WarehouseRepository, sink dominv.EventSink) *ReceptionUseCase {
	return &ReceptionUseCase{txRunner: txRunner, ledger: ledger, warehouses: warehouses, sink: sink}
}

// ConfirmReception confirma que el destino recibió todo lo despachado de una
// solicitud FULFILLED: limpia la cantidad pendiente de cada movimiento y marca
// la confirmación como ACCEPTED. No mueve stock: el saldo destino ya fue
// acreditado al despachar; recibir solo cierra el tránsito.
func (uc *ReceptionUseCase) ConfirmReception(ctx context.Context, tenantID, requestID string) (*entity.MovementRequest, error) {
	if tenantID == "" || requestID == "" {
		return nil, domain.ErrInvalidInput
	}
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
		if req.Status != entity.RequestStatusFulfilled {
			return domain.ErrNotFulfilled
		}
		if req.ConfirmationStatus != entity.ConfirmationPending {
			return domain.ErrAlreadyConfirmed
		}

		movements, err := movementRepo.ListByReference(ctx, tenantID, entity.ReferenceTypeRequestFulfillment, requestID)
		if err != nil {
			return err
		}
		for _, mov := range movements {
			if !mov.IsPending() {
				continue
			}
			if err := movementRepo.DecrementPending(ctx, tenantID, mov.ID, decimal.Zero, mov.Version); err != nil {
				return err
			}
		}
		req.ConfirmationStatus = entity.ConfirmationAccepted
		if err := requestRepo.Update(ctx, req); err != nil {
			return err
		}
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.sink.Publish(ctx, dominv.NewEvent(dominv.EventMovementRequestReceived, tenantID, requestID, nil))
	return request, nil
}

// ReturnItemInput reversa parcial: movimiento de salida original y cantidad.
type ReturnItemInput struct {
	OutMovementID string
	Quantity      decimal.Decimal
}

// ReturnShipmentInput entrada para devolver mercancía de una solicitud.
type ReturnShipmentInput struct {
	TenantID    string
	RequestID   string
	UserID      string
	Mode        string // ALL | PARTIAL
	Reason      string
	EvidenceURL *string
	Items       []ReturnItemInput // requerido en PARTIAL
}

// ReturnShipment devuelve mercancía despachada y aún no recibida al origen.
// ALL revierte toda la cantidad pendiente de cada movimiento y marca REJECTED.
// PARTIAL revierte exactamente las cantidades indicadas; la solicitud queda
// REJECTED solo cuando el último pendiente llega a cero, si no sigue PENDING.
func (uc *ReceptionUseCase) ReturnShipment(ctx context.Context, in ReturnShipmentInput) (*entity.MovementRequest, *entity.StockReturn, error) {
	if in.TenantID == "" || in.RequestID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	switch in.Mode {
	case entity.ReturnModeAll:
	case entity.ReturnModePartial:
		if len(in.Items) == 0 {
			return nil, nil, domain.ErrInvalidInput
		}
	default:
		return nil, nil, domain.ErrInvalidInput
	}

	var request *entity.MovementRequest
	var stockReturn *entity.StockReturn
	var events []dominv.Event

	err := uc.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		movementRepo repository.StockMovementRepository,
		requestRepo repository.MovementRequestRepository,
		returnRepo repository.StockReturnRepository,
	) error {
		req, err := requestRepo.GetForUpdate(ctx, in.TenantID, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != entity.RequestStatusFulfilled {
			return domain.ErrNotFulfilled
		}
		if req.ConfirmationStatus != entity.ConfirmationPending {
			return domain.ErrAlreadyConfirmed
		}

		returnID := uuid.New().String()
		requestRef := req.ID
		ret := &entity.StockReturn{
			ID:          returnID,
			TenantID:    in.TenantID,
			RequestID:   &requestRef,
			Reason:      in.Reason,
			EvidenceURL: in.EvidenceURL,
			CreatedAt:   time.Now(),
			CreatedBy:   in.UserID,
		}

		var evs []dominv.Event
		switch in.Mode {
		case entity.ReturnModeAll:
			evs, err = uc.returnAll(ctx, balanceRepo, movementRepo, ret, in)
		case entity.ReturnModePartial:
			evs, err = uc.returnPartial(ctx, balanceRepo, movementRepo, ret, in)
		}
		if err != nil {
			return err
		}
		events = append(events, evs...)

		if len(ret.Items) == 0 {
			// Nada pendiente que devolver: estado inconsistente con PENDING.
			return domain.ErrInvalidState
		}
		if err := returnRepo.Create(ctx, ret); err != nil {
			return err
		}

		// REJECTED cuando ya no queda nada en tránsito; si no, sigue PENDING.
		movements, err := movementRepo.ListByReference(ctx, in.TenantID, entity.ReferenceTypeRequestFulfillment, in.RequestID)
		if err != nil {
			return err
		}
		allSettled := true
		for _, mov := range movements {
			if mov.IsPending() {
				allSettled = false
				break
			}
		}
		if allSettled {
			req.ConfirmationStatus = entity.ConfirmationRejected
		}
		if err := requestRepo.Update(ctx, req); err != nil {
			return err
		}

		events = append(events, dominv.NewEvent(dominv.EventShipmentReturned, in.TenantID, in.RequestID, map[string]any{
			"return_id": returnID,
			"mode":      in.Mode,
			"settled":   allSettled,
		}))
		request = req
		stockReturn = ret
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.sink.Publish(ctx, events...)
	return request, stockReturn, nil
}

// returnAll revierte toda la cantidad pendiente de cada despacho de la
// solicitud: el libro mueve el pendiente del destino de vuelta al origen y el
// pendiente del movimiento queda en cero.
func (uc *ReceptionUseCase) returnAll(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	movementRepo repository.StockMovementRepository,
	ret *entity.StockReturn,
	in ReturnShipmentInput,
) ([]dominv.Event, error) {
	movements, err := movementRepo.ListByReference(ctx, in.TenantID, entity.ReferenceTypeRequestFulfillment, in.RequestID)
	if err != nil {
		return nil, err
	}
	var events []dominv.Event
	for _, mov := range movements {
		if !mov.IsPending() {
			continue
		}
		evs, err := uc.reverseMovement(ctx, balanceRepo, movementRepo, ret, mov, mov.PendingQuantity, in.UserID)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

// returnPartial revierte las cantidades indicadas contra sus movimientos.
// Cualquier cantidad que exceda el pendiente actual rechaza la operación
// completa con ErrExcessReturn.
func (uc *ReceptionUseCase) returnPartial(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	movementRepo repository.StockMovementRepository,
	ret *entity.StockReturn,
	in ReturnShipmentInput,
) ([]dominv.Event, error) {
	var events []dominv.Event
	for _, item := range in.Items {
		if item.OutMovementID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		mov, err := movementRepo.GetForUpdate(ctx, in.TenantID, item.OutMovementID)
		if err != nil {
			return nil, err
		}
		if mov == nil {
			return nil, domain.ErrNotFound
		}
		if mov.ReferenceType != entity.ReferenceTypeRequestFulfillment || mov.ReferenceID == nil || *mov.ReferenceID != in.RequestID {
			return nil, domain.ErrInvalidInput
		}
		if item.Quantity.GreaterThan(mov.PendingQuantity) {
			return nil, domain.ErrExcessReturn
		}
		evs, err := uc.reverseMovement(ctx, balanceRepo, movementRepo, ret, mov, item.Quantity, in.UserID)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

// reverseMovement mueve qty del destino del movimiento original de vuelta a su
// origen, decrementa el pendiente y agrega la línea a la devolución.
func (uc *ReceptionUseCase) reverseMovement(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	movementRepo repository.StockMovementRepository,
	ret *entity.StockReturn,
	mov *entity.StockMovement,
	qty decimal.Decimal,
	userID string,
) ([]dominv.Event, error) {
	returnRef := ret.ID
	_, events, err := uc.ledger.ApplyMovementInTx(ctx, balanceRepo, movementRepo, ApplyMovementInput{
		TenantID:       mov.TenantID,
		ProductID:      mov.ProductID,
		BatchID:        mov.BatchID,
		FromLocationID: mov.ToLocationID,
		ToLocationID:   mov.FromLocationID,
		Quantity:       qty,
		ReferenceType:  entity.ReferenceTypeReturn,
		ReferenceID:    &returnRef,
		CreatedBy:      userID,
	})
	if err != nil {
		return nil, err
	}
	newPending := mov.PendingQuantity.Sub(qty)
	if err := movementRepo.DecrementPending(ctx, mov.TenantID, mov.ID, newPending, mov.Version); err != nil {
		return nil, err
	}
	mov.PendingQuantity = newPending
	mov.Version++

	// Las devoluciones de la solicitud aterrizan en el origen del despacho.
	if ret.ToLocationID == "" && mov.FromLocationID != nil {
		ret.ToLocationID = *mov.FromLocationID
	}
	outMovID := mov.ID
	ret.Items = append(ret.Items, &entity.StockReturnItem{
		ProductID:     mov.ProductID,
		BatchID:       mov.BatchID,
		OutMovementID: &outMovID,
		Quantity:      qty,
	})
	return events, nil
}

// StandaloneReturnItemInput línea de una devolución directa a stock.
type StandaloneReturnItemInput struct {
	ProductID      string
	BatchID        *string
	PresentationID *string
	Quantity       decimal.Decimal
}

// CreateStandaloneReturnInput entrada para una devolución directa (sin
// solicitud): un operador regresa mercancía ya recibida a una ubicación, con
// motivo libre y foto opcional.
type CreateStandaloneReturnInput struct {
	TenantID     string
	ToLocationID string
	UserID       string
	Reason       string
	EvidenceURL  *string
	Items        []StandaloneReturnItemInput
}

// CreateStandaloneReturn acredita la ubicación destino por cada línea (solo
// pata de entrada, sin contabilidad de pendientes) y persiste la devolución.
func (uc *ReceptionUseCase) CreateStandaloneReturn(ctx context.Context, in CreateStandaloneReturnInput) (*entity.StockReturn, error) {
	if in.TenantID == "" || in.ToLocationID == "" || in.Reason == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	loc, err := uc.warehouses.GetLocation(ctx, in.TenantID, in.ToLocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	var stockReturn *entity.StockReturn
	var events []dominv.Event
	err = uc.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.MovementRequestRepository,
		returnRepo repository.StockReturnRepository,
	) error {
		returnID := uuid.New().String()
		ret := &entity.StockReturn{
			ID:           returnID,
			TenantID:     in.TenantID,
			ToLocationID: in.ToLocationID,
			Reason:       in.Reason,
			EvidenceURL:  in.EvidenceURL,
			CreatedAt:    time.Now(),
			CreatedBy:    in.UserID,
		}
		toLocation := in.ToLocationID
		for _, item := range in.Items {
			returnRef := returnID
			_, evs, err := uc.ledger.ApplyMovementInTx(ctx, balanceRepo, movementRepo, ApplyMovementInput{
				TenantID:      in.TenantID,
				ProductID:     item.ProductID,
				BatchID:       item.BatchID,
				ToLocationID:  &toLocation,
				Quantity:      item.Quantity,
				ReferenceType: entity.ReferenceTypeReturn,
				ReferenceID:   &returnRef,
				CreatedBy:     in.UserID,
			})
			if err != nil {
				return err
			}
			events = append(events, evs...)
			ret.Items = append(ret.Items, &entity.StockReturnItem{
				ProductID:      item.ProductID,
				BatchID:        item.BatchID,
				PresentationID: item.PresentationID,
				Quantity:       item.Quantity,
			})
		}
		if err := returnRepo.Create(ctx, ret); err != nil {
			return err
		}
		stockReturn = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	events = append(events, dominv.NewEvent(dominv.EventStockReturnCreated, in.TenantID, stockReturn.ID, map[string]any{
		"to_location_id": in.ToLocationID,
		"items":          len(stockReturn.Items),
	}))
	uc.sink.Publish(ctx, events...)
	return stockReturn, nil
}
