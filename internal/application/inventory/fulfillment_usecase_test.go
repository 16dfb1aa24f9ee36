package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinv "github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
)

// fulfillmentEnv arma una bodega destino con recepción, una ubicación origen
// con stock y una solicitud abierta de 50 unidades de prod-1.
func fulfillmentEnv(t *testing.T) (*testEnv, *entity.MovementRequest) {
	t.Helper()
	env := newTestEnv()
	env.seedProduct(tenantA, "prod-1", "SKU-001")
	env.seedWarehouse(tenantA, "wh-destino", "loc-recepcion")
	env.seedLocation(tenantA, "wh-destino", "loc-bodega")
	env.balances.seed(tenantA, "prod-1", nil, "loc-bodega", d("100"), d("0"))

	req, err := env.requestUC.Create(context.Background(), appinv.CreateRequestInput{
		TenantID:    tenantA,
		WarehouseID: "wh-destino",
		Items:       []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("50")}},
	})
	require.NoError(t, err)
	env.sink.events = nil
	return env, req
}

func TestFulfillParcial(t *testing.T) {
	env, req := fulfillmentEnv(t)

	updated, movements, err := env.fulfillmentUC.Fulfill(context.Background(), tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-bodega", Quantity: d("20")},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RequestStatusOpen, updated.Status, "despacho parcial deja la solicitud abierta")
	assert.True(t, d("30").Equal(updated.Items[0].RemainingQuantity))
	require.Len(t, movements, 1)
	assert.True(t, d("20").Equal(movements[0].PendingQuantity), "el despacho queda pendiente de recepción")
	assert.Equal(t, entity.ReferenceTypeRequestFulfillment, movements[0].ReferenceType)

	assert.True(t, d("80").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-bodega")))
	assert.True(t, d("20").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-recepcion")),
		"el destino se acredita al despachar, no al recibir")
}

func TestFulfillCompletaLaSolicitud(t *testing.T) {
	env, req := fulfillmentEnv(t)
	ctx := context.Background()

	_, _, err := env.fulfillmentUC.Fulfill(ctx, tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-bodega", Quantity: d("20")},
	})
	require.NoError(t, err)

	// Segunda operación por producto (sin llave estable) completa el ítem.
	updated, _, err := env.fulfillmentUC.Fulfill(ctx, tenantA, req.ID, "user-1", []dominv.PickedLine{
		{ProductID: "prod-1", LocationID: "loc-bodega", Quantity: d("30")},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RequestStatusFulfilled, updated.Status)
	assert.Equal(t, entity.ConfirmationPending, updated.ConfirmationStatus)
	require.NotNil(t, updated.FulfilledAt)
	assert.True(t, updated.Items[0].RemainingQuantity.IsZero())
	assert.Contains(t, env.sink.typesSeen(), dominv.EventMovementRequestFulfilled)
}

func TestFulfillPorSKU(t *testing.T) {
	env, req := fulfillmentEnv(t)

	updated, _, err := env.fulfillmentUC.Fulfill(context.Background(), tenantA, req.ID, "user-1", []dominv.PickedLine{
		{SKU: "SKU-001", LocationID: "loc-bodega", Quantity: d("50")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusFulfilled, updated.Status)
}

func TestFulfillExcesoRechazaTodo(t *testing.T) {
	env, req := fulfillmentEnv(t)

	_, _, err := env.fulfillmentUC.Fulfill(context.Background(), tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-bodega", Quantity: d("51")},
	})
	require.ErrorIs(t, err, domain.ErrOverShipment)

	// Nada se aplicó a medias.
	assert.True(t, d("100").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-bodega")))
	fresh, err := env.requestUC.GetByID(context.Background(), tenantA, req.ID)
	require.NoError(t, err)
	assert.True(t, d("50").Equal(fresh.Items[0].RemainingQuantity))
	assert.Empty(t, env.sink.events)
}

func TestFulfillSinStockEnOrigen(t *testing.T) {
	env, req := fulfillmentEnv(t)
	env.seedLocation(tenantA, "wh-destino", "loc-vacia")

	_, _, err := env.fulfillmentUC.Fulfill(context.Background(), tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-vacia", Quantity: d("10")},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestFulfillLineaSinDestino(t *testing.T) {
	env, req := fulfillmentEnv(t)

	_, _, err := env.fulfillmentUC.Fulfill(context.Background(), tenantA, req.ID, "user-1", []dominv.PickedLine{
		{ProductID: "prod-otro", LocationID: "loc-bodega", Quantity: d("5")},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, d("100").Equal(env.balances.quantity(tenantA, "prod-1", nil, "loc-bodega")))
}

func TestFulfillSolicitudNoAbierta(t *testing.T) {
	env, req := fulfillmentEnv(t)
	ctx := context.Background()

	_, err := env.requestUC.Cancel(ctx, tenantA, req.ID)
	require.NoError(t, err)

	_, _, err = env.fulfillmentUC.Fulfill(ctx, tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-bodega", Quantity: d("5")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestFulfillEntradasInvalidas(t *testing.T) {
	env, req := fulfillmentEnv(t)
	ctx := context.Background()

	_, _, err := env.fulfillmentUC.Fulfill(ctx, tenantA, req.ID, "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = env.fulfillmentUC.Fulfill(ctx, tenantA, "req-x", "user-1", []dominv.PickedLine{
		{RequestItemID: "x", LocationID: "loc-bodega", Quantity: d("1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
