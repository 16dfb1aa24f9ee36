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

func requestEnv() *testEnv {
	env := newTestEnv()
	env.seedProduct(tenantA, "prod-1", "SKU-001")
	env.seedProduct(tenantA, "prod-2", "SKU-002")
	env.seedPresentation("pres-caja", "prod-1", d("10"))
	env.seedWarehouse(tenantA, "wh-destino", "loc-recepcion")
	return env
}

func TestCreateRequest(t *testing.T) {
	env := requestEnv()

	req, err := env.requestUC.Create(context.Background(), appinv.CreateRequestInput{
		TenantID:        tenantA,
		WarehouseID:     "wh-destino",
		RequestedCity:   "Bogotá",
		RequestedByName: "María",
		Items: []appinv.RequestItemInput{
			{ProductID: "prod-1", Quantity: d("50")},
			{ProductID: "prod-2", Quantity: d("20")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RequestStatusOpen, req.Status)
	assert.Equal(t, entity.ConfirmationPending, req.ConfirmationStatus)
	assert.Equal(t, "loc-recepcion", req.LocationID, "el destino es la ubicación de recepción de la bodega")
	require.Len(t, req.Items, 2)
	for _, it := range req.Items {
		assert.True(t, it.RequestedQuantity.Equal(it.RemainingQuantity), "el remanente arranca igual al pedido")
	}
	assert.Equal(t, []string{dominv.EventMovementRequestCreated}, env.sink.typesSeen())
}

func TestCreateRequestConvertePresentacion(t *testing.T) {
	env := requestEnv()

	// 3 cajas x factor 10 = 30 unidades base.
	req, err := env.requestUC.Create(context.Background(), appinv.CreateRequestInput{
		TenantID:    tenantA,
		WarehouseID: "wh-destino",
		Items: []appinv.RequestItemInput{
			{ProductID: "prod-1", PresentationID: "pres-caja", PresentationQuantity: d("3")},
		},
	})
	require.NoError(t, err)
	require.Len(t, req.Items, 1)
	assert.True(t, d("30").Equal(req.Items[0].RequestedQuantity))
	assert.True(t, d("30").Equal(req.Items[0].RemainingQuantity))
	require.NotNil(t, req.Items[0].PresentationQuantity)
	assert.True(t, d("3").Equal(*req.Items[0].PresentationQuantity))
}

func TestCreateRequestValidaciones(t *testing.T) {
	env := requestEnv()
	ctx := context.Background()

	t.Run("sin ítems", func(t *testing.T) {
		_, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{TenantID: tenantA, WarehouseID: "wh-destino"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("bodega inexistente", func(t *testing.T) {
		_, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
			TenantID: tenantA, WarehouseID: "wh-x",
			Items: []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("1")}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("bodega de otro tenant", func(t *testing.T) {
		env.seedWarehouse("tenant-b", "wh-ajena", "loc-ajena")
		_, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
			TenantID: tenantA, WarehouseID: "wh-ajena",
			Items: []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("1")}},
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("cantidad no positiva", func(t *testing.T) {
		_, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
			TenantID: tenantA, WarehouseID: "wh-destino",
			Items: []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("0")}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("presentación de otro producto", func(t *testing.T) {
		_, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
			TenantID: tenantA, WarehouseID: "wh-destino",
			Items: []appinv.RequestItemInput{{ProductID: "prod-2", PresentationID: "pres-caja", PresentationQuantity: d("1")}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCancelRequest(t *testing.T) {
	env := requestEnv()
	ctx := context.Background()

	req, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
		TenantID: tenantA, WarehouseID: "wh-destino",
		Items: []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("10")}},
	})
	require.NoError(t, err)

	cancelled, err := env.requestUC.Cancel(ctx, tenantA, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCancelled, cancelled.Status)

	// Terminal: no se puede cancelar dos veces.
	_, err = env.requestUC.Cancel(ctx, tenantA, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelRequestConDespachosFalla(t *testing.T) {
	env := requestEnv()
	ctx := context.Background()
	env.seedLocation(tenantA, "wh-destino", "loc-bodega")
	env.balances.seed(tenantA, "prod-1", nil, "loc-bodega", d("100"), d("0"))

	req, err := env.requestUC.Create(ctx, appinv.CreateRequestInput{
		TenantID: tenantA, WarehouseID: "wh-destino",
		Items: []appinv.RequestItemInput{{ProductID: "prod-1", Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, _, err = env.fulfillmentUC.Fulfill(ctx, tenantA, req.ID, "user-1", []dominv.PickedLine{
		{RequestItemID: req.Items[0].ID, LocationID: "loc-bodega", Quantity: d("4")},
	})
	require.NoError(t, err)

	_, err = env.requestUC.Cancel(ctx, tenantA, req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetRequestInexistente(t *testing.T) {
	env := requestEnv()
	_, err := env.requestUC.GetByID(context.Background(), tenantA, "req-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
