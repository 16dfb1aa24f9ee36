package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
)

// Ledger es el libro de saldos de inventario: única puerta de mutación de los
// Balance. Cada movimiento aplica sus dos patas (origen y destino) y la fila
// del libro de movimientos en una sola transacción, con bloqueo de fila
// (SELECT FOR UPDATE) sobre los saldos afectados.
type Ledger struct {
	txRunner TxRunner
	balances repository.BalanceRepository // lecturas fuera de transacción
	log      *logger.Logger
	sink     dominv.EventSink
}

// NewLedger construye el libro de saldos.
func NewLedger(txRunner TxRunner, balances repository.BalanceRepository, log *logger.Logger, sink dominv.EventSink) *Ledger {
	return &Ledger{txRunner: txRunner, balances: balances, log: log, sink: sink}
}

// ApplyMovementInput describe un movimiento a aplicar sobre el libro.
// FromLocationID nil = entrada pura; ToLocationID nil = salida pura.
// ReservedDelta descuenta reserva en el origen (despacho de stock reservado).
// Pending marca despachos que esperan recepción/devolución en destino.
type ApplyMovementInput struct {
	TenantID       string
	ProductID      string
	BatchID        *string
	FromLocationID *string
	ToLocationID   *string
	Quantity       decimal.Decimal
	ReservedDelta  decimal.Decimal
	Pending        bool
	ReferenceType  string
	ReferenceID    *string
	CreatedBy      string
}

// ApplyMovement aplica el movimiento en su propia transacción y publica los
// eventos de saldo al confirmar.
func (l *Ledger) ApplyMovement(ctx context.Context, in ApplyMovementInput) (*entity.StockMovement, error) {
	var movement *entity.StockMovement
	var events []dominv.Event
	err := l.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.MovementRequestRepository,
		_ repository.StockReturnRepository,
	) error {
		var err error
		movement, events, err = l.ApplyMovementInTx(ctx, balanceRepo, movementRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.sink.Publish(ctx, events...)
	return movement, nil
}

// ApplyMovementInTx aplica el movimiento usando los repositorios de la
// transacción del caller (para operaciones que combinan libro y solicitud en
// un solo commit). Devuelve los eventos a publicar después del commit.
func (l *Ledger) ApplyMovementInTx(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	movementRepo repository.StockMovementRepository,
	in ApplyMovementInput,
) (*entity.StockMovement, []dominv.Event, error) {
	if in.TenantID == "" || in.ProductID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if in.FromLocationID == nil && in.ToLocationID == nil {
		return nil, nil, domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var events []dominv.Event

	// Pata de salida: bloquea el saldo origen y descuenta.
	if in.FromLocationID != nil {
		origin, err := balanceRepo.GetForUpdate(ctx, in.TenantID, in.ProductID, in.BatchID, *in.FromLocationID)
		if err != nil {
			return nil, nil, err
		}
		if err := dominv.ApplyOutbound(origin, in.Quantity, in.ReservedDelta, now); err != nil {
			return nil, nil, err
		}
		if err := balanceRepo.Save(ctx, origin); err != nil {
			return nil, nil, err
		}
		events = append(events, balanceChangedEvent(origin))
	}

	// Pata de entrada: crea el saldo destino en cero si no existe y suma.
	if in.ToLocationID != nil {
		dest, err := balanceRepo.GetForUpdate(ctx, in.TenantID, in.ProductID, in.BatchID, *in.ToLocationID)
		if err != nil {
			return nil, nil, err
		}
		if err := dominv.ApplyInbound(dest, in.Quantity, now); err != nil {
			return nil, nil, err
		}
		if err := balanceRepo.Save(ctx, dest); err != nil {
			return nil, nil, err
		}
		events = append(events, balanceChangedEvent(dest))
	}

	pending := decimal.Zero
	if in.Pending {
		pending = in.Quantity
	}
	movement := &entity.StockMovement{
		TenantID:        in.TenantID,
		ProductID:       in.ProductID,
		BatchID:         in.BatchID,
		FromLocationID:  in.FromLocationID,
		ToLocationID:    in.ToLocationID,
		Quantity:        in.Quantity,
		PendingQuantity: pending,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		CreatedAt:       now,
		CreatedBy:       in.CreatedBy,
	}
	if err := movementRepo.Create(ctx, movement); err != nil {
		return nil, nil, err
	}
	return movement, events, nil
}

// Reserve aumenta la reserva del saldo sin mover stock (compromiso de venta).
func (l *Ledger) Reserve(ctx context.Context, tenantID, productID string, batchID *string, locationID string, amount decimal.Decimal) error {
	if tenantID == "" || productID == "" || locationID == "" {
		return domain.ErrInvalidInput
	}
	var events []dominv.Event
	err := l.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		_ repository.StockMovementRepository,
		_ repository.MovementRequestRepository,
		_ repository.StockReturnRepository,
	) error {
		b, err := balanceRepo.GetForUpdate(ctx, tenantID, productID, batchID, locationID)
		if err != nil {
			return err
		}
		if err := dominv.Reserve(b, amount, time.Now()); err != nil {
			return err
		}
		if err := balanceRepo.Save(ctx, b); err != nil {
			return err
		}
		events = append(events, balanceChangedEvent(b))
		return nil
	})
	if err != nil {
		return err
	}
	l.sink.Publish(ctx, events...)
	return nil
}

// Release disminuye la reserva. Si la liberación excede la reserva actual no
// falla: se ajusta a cero y se deja constancia en el log (anomalía de datos
// preexistente, no motivo para bloquear la operación legítima en curso).
func (l *Ledger) Release(ctx context.Context, tenantID, productID string, batchID *string, locationID string, amount decimal.Decimal) error {
	if tenantID == "" || productID == "" || locationID == "" {
		return domain.ErrInvalidInput
	}
	var events []dominv.Event
	err := l.txRunner.Run(ctx, func(
		balanceRepo repository.BalanceRepository,
		_ repository.StockMovementRepository,
		_ repository.MovementRequestRepository,
		_ repository.StockReturnRepository,
	) error {
		b, err := balanceRepo.GetForUpdate(ctx, tenantID, productID, batchID, locationID)
		if err != nil {
			return err
		}
		clamped, err := dominv.Release(b, amount, time.Now())
		if err != nil {
			return err
		}
		if clamped {
			l.log.Warn().
				Str("tenant_id", tenantID).
				Str("product_id", productID).
				Str("location_id", locationID).
				Str("amount", amount.String()).
				Msg("liberación de reserva excede la reserva actual; se ajusta a cero (inconsistencia de datos)")
		}
		if err := balanceRepo.Save(ctx, b); err != nil {
			return err
		}
		events = append(events, balanceChangedEvent(b))
		return nil
	})
	if err != nil {
		return err
	}
	l.sink.Publish(ctx, events...)
	return nil
}

// GetBalance devuelve el saldo actual (en mano, reservado, disponible). Si no
// hay fila devuelve un saldo en cero.
func (l *Ledger) GetBalance(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	if tenantID == "" || productID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.balances.Get(ctx, tenantID, productID, batchID, locationID)
}

func balanceChangedEvent(b *entity.Balance) dominv.Event {
	return dominv.NewEvent(dominv.EventBalanceChanged, b.TenantID, b.ID, map[string]any{
		"product_id":  b.ProductID,
		"location_id": b.LocationID,
		"quantity":    b.Quantity.String(),
		"reserved":    b.ReservedQuantity.String(),
		"available":   b.AvailableQuantity().String(),
	})
}
