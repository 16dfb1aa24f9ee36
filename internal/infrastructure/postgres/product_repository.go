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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo persistencia del catálogo: productos, presentaciones y lotes.
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	query := `
		INSERT INTO products (id, tenant_id, sku, name, generic_name, description, price, cost, unit_measure, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.TenantID, product.SKU, product.Name,
		product.GenericName, product.Description, product.Price, product.Cost,
		product.UnitMeasure, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, generic_name, description, price, cost, unit_measure, created_at, updated_at
		FROM products WHERE id = $1`
	return scanProduct(r.q.QueryRow(ctx, query, id))
}

func (r *ProductRepo) GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, generic_name, description, price, cost, unit_measure, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND sku = $2`
	return scanProduct(r.q.QueryRow(ctx, query, tenantID, sku))
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $1, generic_name = $2, description = $3, price = $4, cost = $5, unit_measure = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9`
	_, err := r.q.Exec(ctx, query,
		product.Name, product.GenericName, product.Description, product.Price,
		product.Cost, product.UnitMeasure, product.UpdatedAt,
		product.ID, product.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *ProductRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, sku, name, generic_name, description, price, cost, unit_measure, created_at, updated_at
		FROM products WHERE tenant_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.GenericName,
			&p.Description, &p.Price, &p.Cost, &p.UnitMeasure,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) CreatePresentation(ctx context.Context, presentation *entity.Presentation) error {
	if presentation.ID == "" {
		presentation.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_presentations (id, product_id, name, factor, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		presentation.ID, presentation.ProductID, presentation.Name,
		presentation.Factor, presentation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create presentation: %w", err)
	}
	return nil
}

func (r *ProductRepo) ListPresentations(ctx context.Context, productID string) ([]*entity.Presentation, error) {
	query := `
		SELECT id, product_id, name, factor, created_at
		FROM product_presentations WHERE product_id = $1
		ORDER BY factor`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	defer rows.Close()

	var presentations []*entity.Presentation
	for rows.Next() {
		var p entity.Presentation
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Name, &p.Factor, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan presentation: %w", err)
		}
		presentations = append(presentations, &p)
	}
	return presentations, rows.Err()
}

func (r *ProductRepo) GetPresentation(ctx context.Context, id string) (*entity.Presentation, error) {
	query := `
		SELECT id, product_id, name, factor, created_at
		FROM product_presentations WHERE id = $1`
	var p entity.Presentation
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.ProductID, &p.Name, &p.Factor, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get presentation: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) CreateBatch(ctx context.Context, batch *entity.ProductBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_batches (id, tenant_id, product_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.TenantID, batch.ProductID, batch.Code,
		batch.ExpiresAt, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetBatch(ctx context.Context, tenantID, id string) (*entity.ProductBatch, error) {
	query := `
		SELECT id, tenant_id, product_id, code, expires_at, created_at
		FROM product_batches WHERE tenant_id = $1 AND id = $2`
	var b entity.ProductBatch
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&b.ID, &b.TenantID, &b.ProductID, &b.Code, &b.ExpiresAt, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

func (r *ProductRepo) ListBatches(ctx context.Context, tenantID, productID string) ([]*entity.ProductBatch, error) {
	query := `
		SELECT id, tenant_id, product_id, code, expires_at, created_at
		FROM product_batches WHERE tenant_id = $1 AND product_id = $2
		ORDER BY expires_at NULLS LAST, created_at`
	rows, err := r.q.Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*entity.ProductBatch
	for rows.Next() {
		var b entity.ProductBatch
		if err := rows.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.Code,
			&b.ExpiresAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, &b)
	}
	return batches, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.GenericName,
		&p.Description, &p.Price, &p.Cost, &p.UnitMeasure,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
