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

var _ repository.StockReturnRepository = (*StockReturnRepo)(nil)

// StockReturnRepo persistencia de devoluciones (filas inmutables).
type StockReturnRepo struct {
	q Querier
}

func NewStockReturnRepository(q Querier) *StockReturnRepo {
	return &StockReturnRepo{q: q}
}

// Create persiste la devolución y sus ítems.
func (r *StockReturnRepo) Create(ctx context.Context, stockReturn *entity.StockReturn) error {
	if stockReturn.ID == "" {
		stockReturn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_returns (id, tenant_id, to_location_id, request_id, reason, evidence_url, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		stockReturn.ID, stockReturn.TenantID, stockReturn.ToLocationID,
		stockReturn.RequestID, stockReturn.Reason, stockReturn.EvidenceURL,
		stockReturn.CreatedAt, stockReturn.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock return: %w", err)
	}

	for _, it := range stockReturn.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReturnID = stockReturn.ID
		itemQuery := `
			INSERT INTO stock_return_items (id, return_id, product_id, batch_id, out_movement_id, presentation_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.ReturnID, it.ProductID, it.BatchID,
			it.OutMovementID, it.PresentationID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("create return item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la devolución con ítems; nil si no existe.
func (r *StockReturnRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockReturn, error) {
	query := `
		SELECT id, tenant_id, to_location_id, request_id, reason, evidence_url, created_at, created_by
		FROM stock_returns WHERE tenant_id = $1 AND id = $2`
	var ret entity.StockReturn
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&ret.ID, &ret.TenantID, &ret.ToLocationID, &ret.RequestID,
		&ret.Reason, &ret.EvidenceURL, &ret.CreatedAt, &ret.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock return: %w", err)
	}
	items, err := r.loadItems(ctx, ret.ID)
	if err != nil {
		return nil, err
	}
	ret.Items = items
	return &ret, nil
}

// ListByRequest lista las devoluciones hechas contra una solicitud.
func (r *StockReturnRepo) ListByRequest(ctx context.Context, tenantID, requestID string) ([]*entity.StockReturn, error) {
	query := `
		SELECT id, tenant_id, to_location_id, request_id, reason, evidence_url, created_at, created_by
		FROM stock_returns WHERE tenant_id = $1 AND request_id = $2
		ORDER BY created_at`
	return r.list(ctx, query, tenantID, requestID)
}

// List lista devoluciones del tenant, más recientes primero.
func (r *StockReturnRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.StockReturn, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, to_location_id, request_id, reason, evidence_url, created_at, created_by
		FROM stock_returns WHERE tenant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, tenantID, limit, offset)
}

func (r *StockReturnRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockReturn, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock returns: %w", err)
	}
	defer rows.Close()

	var returns []*entity.StockReturn
	for rows.Next() {
		var ret entity.StockReturn
		if err := rows.Scan(&ret.ID, &ret.TenantID, &ret.ToLocationID,
			&ret.RequestID, &ret.Reason, &ret.EvidenceURL,
			&ret.CreatedAt, &ret.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock return: %w", err)
		}
		returns = append(returns, &ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ret := range returns {
		items, err := r.loadItems(ctx, ret.ID)
		if err != nil {
			return nil, err
		}
		ret.Items = items
	}
	return returns, nil
}

func (r *StockReturnRepo) loadItems(ctx context.Context, returnID string) ([]*entity.StockReturnItem, error) {
	query := `
		SELECT id, return_id, product_id, batch_id, out_movement_id, presentation_id, quantity
		FROM stock_return_items WHERE return_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, returnID)
	if err != nil {
		return nil, fmt.Errorf("load return items: %w", err)
	}
	defer rows.Close()

	var items []*entity.StockReturnItem
	for rows.Next() {
		var it entity.StockReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ProductID, &it.BatchID,
			&it.OutMovementID, &it.PresentationID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
