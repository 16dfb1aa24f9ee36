package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (farmacia/retail).
type Product struct {
	ID          string
	TenantID    string
	SKU         string // código único por tenant
	Name        string
	GenericName string // nombre genérico/principio activo (farmacia)
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo promedio ponderado
	UnitMeasure string          // unidad base (unidad, ml, g)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Presentation es una unidad de empaque de un producto (ej. caja x12) con su
// factor de conversión a unidades base.
type Presentation struct {
	ID        string
	ProductID string
	Name      string
	Factor    decimal.Decimal // unidades base por presentación, > 0
	CreatedAt time.Time
}

// ProductBatch es un lote de un producto con vencimiento (selección FEFO a
// cargo del operador que arma el picking).
type ProductBatch struct {
	ID        string
	TenantID  string
	ProductID string
	Code      string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
