package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/inventory"
)

func line(itemID, productID, sku, qty string) inventory.PickedLine {
	return inventory.PickedLine{
		RequestItemID: itemID,
		ProductID:     productID,
		SKU:           sku,
		LocationID:    "loc-origen",
		Quantity:      dec(qty),
	}
}

func TestMatchPickedLines_PorLlaveEstable(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	matches, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "4"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "it-1", matches[0].Item.ID)
	assert.Equal(t, "prod-1", matches[0].Line.ProductID,
		"el producto del ítem debe completarse en la línea")
}

func TestMatchPickedLines_PorProducto(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	matches, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("", "prod-1", "", "10"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "it-1", matches[0].Item.ID)
}

func TestMatchPickedLines_PorSKU(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))
	skuByProduct := map[string]string{"prod-1": "ACETA-500"}

	matches, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("", "", "ACETA-500", "10"),
	}, skuByProduct)

	require.NoError(t, err)
	assert.Equal(t, "it-1", matches[0].Item.ID)
}

// Mismo producto en dos ítems: el cruce por producto toma el ítem más antiguo
// con remanente; agotado el primero, la siguiente línea cae al segundo.
func TestMatchPickedLines_ProductoDuplicadoTomaElMasAntiguo(t *testing.T) {
	req := newOpenRequest(
		newItem("it-1", "prod-1", "5"),
		newItem("it-2", "prod-1", "8"),
	)

	matches, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("", "prod-1", "", "5"),
		line("", "prod-1", "", "3"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "it-1", matches[0].Item.ID)
	assert.Equal(t, "it-2", matches[1].Item.ID,
		"agotado it-1, la segunda línea debe cruzar con it-2")
}

// Varias líneas del mismo producto (distintos lotes) contra un solo ítem: el
// remanente simulado acumula dentro de la operación.
func TestMatchPickedLines_VariasLineasMismoItem(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	matches, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "6"),
		line("it-1", "", "", "4"),
	}, nil)

	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMatchPickedLines_ExcesoAcumuladoFalla(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "6"),
		line("it-1", "", "", "5"),
	}, nil)

	assert.ErrorIs(t, err, domain.ErrOverShipment,
		"6+5 excede las 10 pedidas; toda la operación se rechaza")
}

func TestMatchPickedLines_LineaSinDestinoFalla(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("", "prod-99", "", "1"),
	}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una línea mala rechaza la operación completa aunque las anteriores crucen.
func TestMatchPickedLines_TodoONada(t *testing.T) {
	req := newOpenRequest(
		newItem("it-1", "prod-1", "10"),
		newItem("it-2", "prod-2", "5"),
	)

	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "10"),
		line("", "prod-desconocido", "", "1"),
	}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatchPickedLines_SolicitudNoAbierta(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))
	req.Status = entity.RequestStatusCancelled

	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "1"),
	}, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMatchPickedLines_LineaInvalida(t *testing.T) {
	req := newOpenRequest(newItem("it-1", "prod-1", "10"))

	// sin ubicación origen
	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		{RequestItemID: "it-1", Quantity: dec("1")},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// sin identificador alguno
	_, err = inventory.MatchPickedLines(req, []inventory.PickedLine{
		{LocationID: "loc-origen", Quantity: dec("1")},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// sin líneas
	_, err = inventory.MatchPickedLines(req, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El ítem referenciado por llave estable puede recibir más de su remanente solo
// hasta el límite; la llave estable no salta a otro ítem.
func TestMatchPickedLines_LlaveEstableNoDesborda(t *testing.T) {
	req := newOpenRequest(
		newItem("it-1", "prod-1", "5"),
		newItem("it-2", "prod-1", "8"),
	)

	_, err := inventory.MatchPickedLines(req, []inventory.PickedLine{
		line("it-1", "", "", "6"),
	}, nil)

	assert.ErrorIs(t, err, domain.ErrOverShipment,
		"con request_item_id explícito no se redistribuye al otro ítem")
}
