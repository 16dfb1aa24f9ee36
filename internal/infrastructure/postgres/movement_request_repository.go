package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

var _ repository.MovementRequestRepository = (*MovementRequestRepo)(nil)

// MovementRequestRepo persistencia de solicitudes de traslado y sus ítems.
type MovementRequestRepo struct {
	q Querier
}

func NewMovementRequestRepository(q Querier) *MovementRequestRepo {
	return &MovementRequestRepo{q: q}
}

// Create persiste la solicitud y sus ítems.
func (r *MovementRequestRepo) Create(ctx context.Context, request *entity.MovementRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_requests (id, tenant_id, warehouse_id, location_id, requested_city, requested_by_name, status, confirmation_status, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9)`
	_, err := r.q.Exec(ctx, query,
		request.ID, request.TenantID, request.WarehouseID, request.LocationID,
		request.RequestedCity, request.RequestedByName, request.Status,
		request.ConfirmationStatus, request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement request: %w", err)
	}
	request.Version = 1

	for _, it := range request.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.RequestID = request.ID
		itemQuery := `
			INSERT INTO movement_request_items (id, request_id, product_id, presentation_id, presentation_quantity, requested_quantity, remaining_quantity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.RequestID, it.ProductID, it.PresentationID,
			it.PresentationQuantity, it.RequestedQuantity, it.RemainingQuantity,
			it.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create request item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la solicitud con ítems; nil si no existe.
func (r *MovementRequestRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.MovementRequest, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate bloquea la fila de la solicitud antes de cargar los ítems.
func (r *MovementRequestRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.MovementRequest, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *MovementRequestRepo) get(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.MovementRequest, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, location_id, requested_city, requested_by_name, status, confirmation_status, version, created_at, fulfilled_at
		FROM movement_requests WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var req entity.MovementRequest
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&req.ID, &req.TenantID, &req.WarehouseID, &req.LocationID,
		&req.RequestedCity, &req.RequestedByName, &req.Status,
		&req.ConfirmationStatus, &req.Version, &req.CreatedAt, &req.FulfilledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement request: %w", err)
	}
	items, err := r.loadItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return &req, nil
}

func (r *MovementRequestRepo) loadItems(ctx context.Context, requestID string) ([]*entity.MovementRequestItem, error) {
	query := `
		SELECT id, request_id, product_id, presentation_id, presentation_quantity, requested_quantity, remaining_quantity, created_at
		FROM movement_request_items WHERE request_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request items: %w", err)
	}
	defer rows.Close()

	var items []*entity.MovementRequestItem
	for rows.Next() {
		var it entity.MovementRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ProductID,
			&it.PresentationID, &it.PresentationQuantity,
			&it.RequestedQuantity, &it.RemainingQuantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// Update persiste estado, confirmación y remanentes de ítems condicionando
// por la versión leída. Cero filas en el encabezado = conflicto concurrente.
func (r *MovementRequestRepo) Update(ctx context.Context, request *entity.MovementRequest) error {
	query := `
		UPDATE movement_requests
		SET status = $1, confirmation_status = $2, fulfilled_at = $3, version = version + 1
		WHERE tenant_id = $4 AND id = $5 AND version = $6`
	tag, err := r.q.Exec(ctx, query,
		request.Status, request.ConfirmationStatus, request.FulfilledAt,
		request.TenantID, request.ID, request.Version,
	)
	if err != nil {
		return fmt.Errorf("update movement request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	request.Version++

	for _, it := range request.Items {
		itemQuery := `
			UPDATE movement_request_items SET remaining_quantity = $1
			WHERE id = $2 AND request_id = $3`
		if _, err := r.q.Exec(ctx, itemQuery, it.RemainingQuantity, it.ID, request.ID); err != nil {
			return fmt.Errorf("update request item: %w", err)
		}
	}
	return nil
}

// List lista solicitudes del tenant, opcionalmente filtradas por estado.
func (r *MovementRequestRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.MovementRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, warehouse_id, location_id, requested_city, requested_by_name, status, confirmation_status, version, created_at, fulfilled_at
		FROM movement_requests WHERE tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.MovementRequest
	for rows.Next() {
		var req entity.MovementRequest
		if err := rows.Scan(&req.ID, &req.TenantID, &req.WarehouseID,
			&req.LocationID, &req.RequestedCity, &req.RequestedByName,
			&req.Status, &req.ConfirmationStatus, &req.Version,
			&req.CreatedAt, &req.FulfilledAt); err != nil {
			return nil, fmt.Errorf("scan movement request: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, req := range requests {
		items, err := r.loadItems(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		req.Items = items
	}
	return requests, nil
}
