package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinv "github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
)

const tenantA = "tenant-a"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func TestLedgerApplyMovementTransfer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("100"), decimal.Zero)

	mov, err := env.ledger.ApplyMovement(ctx, appinv.ApplyMovementInput{
		TenantID:       tenantA,
		ProductID:      "prod-1",
		FromLocationID: strPtr("loc-a"),
		ToLocationID:   strPtr("loc-b"),
		Quantity:       d("30"),
		ReferenceType:  entity.ReferenceTypeTransfer,
		CreatedBy:      "user-1",
	})
	require.NoError(t, err)
	require.NotNil(t, mov)

	assert.True(t, d("70").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-a")), "el origen debe quedar en 70")
	assert.True(t, d("30").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-b")), "el destino debe quedar en 30")
	assert.True(t, mov.PendingQuantity.IsZero(), "un traslado directo no deja pendiente")
	assert.Equal(t, entity.ReferenceTypeTransfer, mov.ReferenceType)

	// Una pata de saldo por ubicación tocada.
	assert.Equal(t, []string{dominv.EventBalanceChanged, dominv.EventBalanceChanged}, env.sink.typesSeen())
}

func TestLedgerApplyMovementSinStockSuficiente(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("10"), decimal.Zero)

	_, err := env.ledger.ApplyMovement(ctx, appinv.ApplyMovementInput{
		TenantID:       tenantA,
		ProductID:      "prod-1",
		FromLocationID: strPtr("loc-a"),
		Quantity:       d("11"),
		ReferenceType:  entity.ReferenceTypeExit,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("10").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-a")), "el saldo no debe cambiar")
	assert.Empty(t, env.sink.events, "no se publican eventos si la operación falla")
}

func TestLedgerApplyMovementRespetaReserva(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	// 100 en mano pero 80 reservados: solo 20 disponibles.
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("100"), d("80"))

	_, err := env.ledger.ApplyMovement(ctx, appinv.ApplyMovementInput{
		TenantID:       tenantA,
		ProductID:      "prod-1",
		FromLocationID: strPtr("loc-a"),
		Quantity:       d("30"),
		ReferenceType:  entity.ReferenceTypeExit,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	// Con ReservedDelta la salida consume la reserva y sí procede.
	_, err = env.ledger.ApplyMovement(ctx, appinv.ApplyMovementInput{
		TenantID:       tenantA,
		ProductID:      "prod-1",
		FromLocationID: strPtr("loc-a"),
		Quantity:       d("30"),
		ReservedDelta:  d("30"),
		ReferenceType:  entity.ReferenceTypeExit,
	})
	require.NoError(t, err)
	b, err := env.ledger.GetBalance(ctx, tenantA, "prod-1", nil, "loc-a")
	require.NoError(t, err)
	assert.True(t, d("70").Equal(b.Quantity))
	assert.True(t, d("50").Equal(b.ReservedQuantity))
}

func TestLedgerApplyMovementEntradaCreaSaldo(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.ledger.ApplyMovement(ctx, appinv.ApplyMovementInput{
		TenantID:      tenantA,
		ProductID:     "prod-1",
		ToLocationID:  strPtr("loc-nueva"),
		Quantity:      d("5"),
		ReferenceType: entity.ReferenceTypeEntry,
	})
	require.NoError(t, err)

	b, err := env.ledger.GetBalance(ctx, tenantA, "prod-1", nil, "loc-nueva")
	require.NoError(t, err)
	assert.True(t, d("5").Equal(b.Quantity))
	assert.EqualValues(t, 1, b.Version, "la primera escritura inserta con versión 1")
}

func TestLedgerApplyMovementEntradaInvalida(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	casos := []appinv.ApplyMovementInput{
		{TenantID: tenantA, ProductID: "prod-1", Quantity: d("1")},                                // sin ubicaciones
		{TenantID: tenantA, ProductID: "prod-1", ToLocationID: strPtr("loc-a")},                   // cantidad cero
		{TenantID: tenantA, ProductID: "prod-1", ToLocationID: strPtr("loc-a"), Quantity: d("-1")}, // negativa
		{TenantID: tenantA, ToLocationID: strPtr("loc-a"), Quantity: d("1")},                      // sin producto
	}
	for _, in := range casos {
		_, err := env.ledger.ApplyMovement(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestLedgerReserveYRelease(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("50"), decimal.Zero)

	require.NoError(t, env.ledger.Reserve(ctx, tenantA, "prod-1", nil, "loc-a", d("20")))
	b, _ := env.ledger.GetBalance(ctx, tenantA, "prod-1", nil, "loc-a")
	assert.True(t, d("20").Equal(b.ReservedQuantity))
	assert.True(t, d("30").Equal(b.AvailableQuantity()))

	// Reservar más de lo disponible falla.
	err := env.ledger.Reserve(ctx, tenantA, "prod-1", nil, "loc-a", d("31"))
	require.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	require.NoError(t, env.ledger.Release(ctx, tenantA, "prod-1", nil, "loc-a", d("15")))
	b, _ = env.ledger.GetBalance(ctx, tenantA, "prod-1", nil, "loc-a")
	assert.True(t, d("5").Equal(b.ReservedQuantity))
}

func TestLedgerReleaseExcedenteAjustaACero(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("50"), d("5"))

	// Liberar más de lo reservado no falla: ajusta a cero.
	require.NoError(t, env.ledger.Release(ctx, tenantA, "prod-1", nil, "loc-a", d("10")))
	b, _ := env.ledger.GetBalance(ctx, tenantA, "prod-1", nil, "loc-a")
	assert.True(t, b.ReservedQuantity.IsZero())
	assert.True(t, d("50").Equal(b.Quantity), "liberar reserva no mueve stock")
}

// staleBalances simula un escritor concurrente: la lectura bloqueada devuelve
// una versión que ya no coincide con la fila al momento de escribir.
type staleBalances struct {
	repository.BalanceRepository
}

func (r staleBalances) GetForUpdate(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	b, err := r.BalanceRepository.GetForUpdate(ctx, tenantID, productID, batchID, locationID)
	if b != nil {
		b.Version = 99
	}
	return b, err
}

func TestLedgerConflictoDeEscrituraConcurrente(t *testing.T) {
	env := newTestEnv()
	env.balances.seed(tenantA, "prod-1", nil, "loc-a", d("10"), decimal.Zero)

	tx := &fakeTxRunner{
		balances:  staleBalances{env.balances},
		movements: env.movements,
		requests:  env.requests,
		returns:   env.returns,
	}
	ledger := appinv.NewLedger(tx, env.balances, logger.Nop(), env.sink)

	_, err := ledger.ApplyMovement(context.Background(), appinv.ApplyMovementInput{
		TenantID:       tenantA,
		ProductID:      "prod-1",
		FromLocationID: strPtr("loc-a"),
		Quantity:       d("1"),
		ReferenceType:  entity.ReferenceTypeExit,
	})
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, d("10").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-a")),
		"el perdedor no escribe nada; reintentar es seguro")
}

func TestLedgerGetBalanceSinFila(t *testing.T) {
	env := newTestEnv()

	b, err := env.ledger.GetBalance(context.Background(), tenantA, "prod-x", nil, "loc-x")
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())
	assert.True(t, b.ReservedQuantity.IsZero())
	assert.EqualValues(t, 0, b.Version)
}
