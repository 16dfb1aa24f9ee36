package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo persistencia de bodegas y ubicaciones de almacenamiento.
type WarehouseRepo struct {
	q Querier
}

func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}
	query := `
		INSERT INTO warehouses (id, tenant_id, name, city, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.TenantID, warehouse.Name, warehouse.City,
		warehouse.Address, warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, tenant_id, name, city, address, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.TenantID, &w.Name, &w.City, &w.Address, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

func (r *WarehouseRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, name, city, address, created_at, updated_at
		FROM warehouses WHERE tenant_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.TenantID, &w.Name, &w.City, &w.Address,
			&w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, &w)
	}
	return warehouses, rows.Err()
}

func (r *WarehouseRepo) CreateLocation(ctx context.Context, location *entity.Location) error {
	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	query := `
		INSERT INTO locations (id, tenant_id, warehouse_id, name, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		location.ID, location.TenantID, location.WarehouseID, location.Name,
		location.IsDefault, location.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetLocation(ctx context.Context, tenantID, id string) (*entity.Location, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, name, is_default, created_at
		FROM locations WHERE tenant_id = $1 AND id = $2`
	return scanLocation(r.q.QueryRow(ctx, query, tenantID, id))
}

// GetDefaultLocation devuelve la ubicación de recepción de la bodega; nil si
// la bodega no tiene ubicación por defecto.
func (r *WarehouseRepo) GetDefaultLocation(ctx context.Context, tenantID, warehouseID string) (*entity.Location, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, name, is_default, created_at
		FROM locations WHERE tenant_id = $1 AND warehouse_id = $2 AND is_default
		LIMIT 1`
	return scanLocation(r.q.QueryRow(ctx, query, tenantID, warehouseID))
}

func (r *WarehouseRepo) ListLocations(ctx context.Context, tenantID, warehouseID string) ([]*entity.Location, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, name, is_default, created_at
		FROM locations WHERE tenant_id = $1 AND warehouse_id = $2
		ORDER BY is_default DESC, name`
	rows, err := r.q.Query(ctx, query, tenantID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.TenantID, &l.WarehouseID, &l.Name,
			&l.IsDefault, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.TenantID, &l.WarehouseID, &l.Name, &l.IsDefault, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}
