package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// Conciliador de picking: decide qué ítem de la solicitud satisface cada línea
// preparada en bodega. La llave primaria de cruce es RequestItemID (estable);
// cuando el picking no la trae, se cae a identidad de producto y, en último
// término, a SKU. Ante varios ítems abiertos del mismo producto se toma el más
// antiguo con remanente, en orden de creación (determinista).

// PickedLine es una línea preparada: qué se sacó, de dónde y cuánto. El lote es
// decisión del operador (FEFO u otra política, externa a este núcleo).
type PickedLine struct {
	RequestItemID string // llave estable; vacío = cruzar por producto/SKU
	ProductID     string
	SKU           string // cruce por identidad externa cuando falta ProductID
	BatchID       *string
	LocationID    string // ubicación origen del picking
	Quantity      decimal.Decimal
}

// LineMatch une una línea preparada con el ítem de la solicitud que satisface.
type LineMatch struct {
	Item *entity.MovementRequestItem
	Line PickedLine
}

// MatchPickedLines cruza todas las líneas contra los ítems abiertos de la
// solicitud. skuByProduct mapea ProductID -> SKU para el cruce por identidad
// externa. Cualquier línea sin ítem destino falla con ErrNotFound; cualquier
// línea que exceda el remanente simulado falla con ErrOverShipment — en ambos
// casos la operación completa se rechaza (ninguna línea se aplica a medias).
func MatchPickedLines(req *entity.MovementRequest, lines []PickedLine, skuByProduct map[string]string) ([]LineMatch, error) {
	if req.Status != entity.RequestStatusOpen {
		return nil, domain.ErrInvalidState
	}
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Remanente simulado por ítem: varias líneas pueden pegarle al mismo ítem
	// dentro de una misma operación de despacho.
	remaining := make(map[string]decimal.Decimal, len(req.Items))
	byID := make(map[string]*entity.MovementRequestItem, len(req.Items))
	for _, it := range req.Items {
		remaining[it.ID] = it.RemainingQuantity
		byID[it.ID] = it
	}

	matches := make([]LineMatch, 0, len(lines))
	for _, line := range lines {
		if line.LocationID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item, err := resolveItem(req, line, remaining, byID, skuByProduct)
		if err != nil {
			return nil, err
		}
		if line.Quantity.GreaterThan(remaining[item.ID]) {
			return nil, domain.ErrOverShipment
		}
		remaining[item.ID] = remaining[item.ID].Sub(line.Quantity)
		if line.ProductID == "" {
			line.ProductID = item.ProductID
		}
		matches = append(matches, LineMatch{Item: item, Line: line})
	}
	return matches, nil
}

// resolveItem encuentra el ítem destino de una línea: primero por llave
// estable, luego por producto, por último por SKU.
func resolveItem(
	req *entity.MovementRequest,
	line PickedLine,
	remaining map[string]decimal.Decimal,
	byID map[string]*entity.MovementRequestItem,
	skuByProduct map[string]string,
) (*entity.MovementRequestItem, error) {
	if line.RequestItemID != "" {
		it, ok := byID[line.RequestItemID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		return it, nil
	}
	if line.ProductID != "" {
		return oldestOpenItem(req, remaining, func(it *entity.MovementRequestItem) bool {
			return it.ProductID == line.ProductID
		})
	}
	if line.SKU != "" {
		return oldestOpenItem(req, remaining, func(it *entity.MovementRequestItem) bool {
			return skuByProduct[it.ProductID] == line.SKU
		})
	}
	return nil, domain.ErrInvalidInput
}

// oldestOpenItem devuelve el primer ítem (en orden de creación) que cumple el
// predicado y aún tiene remanente simulado.
func oldestOpenItem(req *entity.MovementRequest, remaining map[string]decimal.Decimal, match func(*entity.MovementRequestItem) bool) (*entity.MovementRequestItem, error) {
	for _, it := range req.Items {
		if match(it) && remaining[it.ID].GreaterThan(decimal.Zero) {
			return it, nil
		}
	}
	return nil, domain.ErrNotFound
}
