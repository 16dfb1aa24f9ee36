package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// WarehouseResponse bodega en respuestas.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateLocationRequest body para POST /api/warehouses/:id/locations.
type CreateLocationRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// LocationResponse ubicación de almacenamiento en respuestas.
type LocationResponse struct {
	ID          string `json:"id"`
	WarehouseID string `json:"warehouse_id"`
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	GenericName string          `json:"generic_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	UnitMeasure string          `json:"unit_measure"`
}

// UpdateProductRequest body para PUT /api/products/:id (campos opcionales).
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	GenericName *string          `json:"generic_name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	UnitMeasure *string          `json:"unit_measure,omitempty"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	GenericName string          `json:"generic_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	UnitMeasure string          `json:"unit_measure"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreatePresentationRequest body para POST /api/products/:id/presentations.
type CreatePresentationRequest struct {
	Name   string          `json:"name"`
	Factor decimal.Decimal `json:"factor"` // unidades base por presentación
}

// PresentationResponse presentación en respuestas.
type PresentationResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Factor    decimal.Decimal `json:"factor"`
}

// CreateBatchRequest body para POST /api/products/:id/batches.
type CreateBatchRequest struct {
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BatchResponse lote en respuestas.
type BatchResponse struct {
	ID        string     `json:"id"`
	ProductID string     `json:"product_id"`
	Code      string     `json:"code"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
