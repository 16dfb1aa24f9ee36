package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una bodega con su ubicación de recepción por defecto.
func (uc *WarehouseUseCase) Create(ctx context.Context, tenantID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      in.Name,
		City:      in.City,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	// Toda bodega nace con una ubicación de recepción.
	location := &entity.Location{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		WarehouseID: warehouse.ID,
		Name:        "Recepción",
		IsDefault:   true,
		CreatedAt:   now,
	}
	if err := uc.repo.CreateLocation(ctx, location); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID (del tenant).
func (uc *WarehouseUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil || warehouse.TenantID != tenantID {
		return nil, nil
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas del tenant con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, tenantID string, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// CreateLocation agrega una ubicación de almacenamiento a una bodega.
func (uc *WarehouseUseCase) CreateLocation(ctx context.Context, tenantID, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.repo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if warehouse.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	location := &entity.Location{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		Name:        in.Name,
		IsDefault:   in.IsDefault,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.CreateLocation(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// ListLocations lista las ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, tenantID, warehouseID string) ([]dto.LocationResponse, error) {
	list, err := uc.repo.ListLocations(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return items, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		TenantID:  w.TenantID,
		Name:      w.Name,
		City:      w.City,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Name:        l.Name,
		IsDefault:   l.IsDefault,
	}
}
