package entity

import "time"

// Warehouse representa una bodega o sucursal (multi-bodega por tenant).
type Warehouse struct {
	ID        string
	TenantID  string
	Name      string
	City      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location es una ubicación de almacenamiento dentro de una bodega. Los saldos
// de inventario se llevan por ubicación. IsDefault marca la ubicación de
// recepción de la bodega (destino por defecto de los traslados).
type Location struct {
	ID          string
	TenantID    string
	WarehouseID string
	Name        string
	IsDefault   bool
	CreatedAt   time.Time
}
