package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos, presentaciones y lotes.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto. El SKU es único por tenant.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, tenantID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		SKU:         in.SKU,
		Name:        in.Name,
		GenericName: in.GenericName,
		Description: in.Description,
		Price:       in.Price,
		Cost:        in.Cost,
		UnitMeasure: in.UnitMeasure,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza campos opcionales de un producto.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.GenericName != nil {
		product.GenericName = *in.GenericName
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// CreatePresentation agrega una presentación (empaque) a un producto.
// El factor de conversión a unidades base debe ser positivo.
func (uc *ProductUseCase) CreatePresentation(ctx context.Context, tenantID, productID string, in dto.CreatePresentationRequest) (*dto.PresentationResponse, error) {
	if in.Name == "" || !in.Factor.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	presentation := &entity.Presentation{
		ID:        uuid.New().String(),
		ProductID: productID,
		Name:      in.Name,
		Factor:    in.Factor,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.CreatePresentation(ctx, presentation); err != nil {
		return nil, err
	}
	return toPresentationResponse(presentation), nil
}

// ListPresentations lista las presentaciones de un producto.
func (uc *ProductUseCase) ListPresentations(ctx context.Context, tenantID, productID string) ([]dto.PresentationResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repo.ListPresentations(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PresentationResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPresentationResponse(p))
	}
	return items, nil
}

// CreateBatch registra un lote del producto (vencimiento para FEFO).
func (uc *ProductUseCase) CreateBatch(ctx context.Context, tenantID, productID string, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if in.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	batch := &entity.ProductBatch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ProductID: productID,
		Code:      in.Code,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// ListBatches lista los lotes de un producto.
func (uc *ProductUseCase) ListBatches(ctx context.Context, tenantID, productID string) ([]dto.BatchResponse, error) {
	list, err := uc.repo.ListBatches(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBatchResponse(b))
	}
	return items, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		SKU:         p.SKU,
		Name:        p.Name,
		GenericName: p.GenericName,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		UnitMeasure: p.UnitMeasure,
		CreatedAt:   p.CreatedAt,
	}
}

func toPresentationResponse(p *entity.Presentation) *dto.PresentationResponse {
	if p == nil {
		return nil
	}
	return &dto.PresentationResponse{
		ID:        p.ID,
		ProductID: p.ProductID,
		Name:      p.Name,
		Factor:    p.Factor,
	}
}

func toBatchResponse(b *entity.ProductBatch) *dto.BatchResponse {
	if b == nil {
		return nil
	}
	return &dto.BatchResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Code:      b.Code,
		ExpiresAt: b.ExpiresAt,
	}
}
