package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Las filas son inmutables salvo pending_quantity.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, product_id, batch_id, from_location_id, to_location_id, quantity, pending_quantity, reference_type, reference_id, version, created_at, created_by`

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, product_id, batch_id, from_location_id, to_location_id, quantity, pending_quantity, reference_type, reference_id, version, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TenantID, movement.ProductID, movement.BatchID,
		movement.FromLocationID, movement.ToLocationID, movement.Quantity,
		movement.PendingQuantity, movement.ReferenceType, movement.ReferenceID,
		movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	movement.Version = 1
	return nil
}

// GetByID obtiene un movimiento; nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate bloquea la fila del movimiento (SELECT FOR UPDATE).
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *StockMovementRepo) get(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	m, err := scanMovementRow(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByReference lista los movimientos originados por una operación, en
// orden de creación.
func (r *StockMovementRepo) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// DecrementPending baja la cantidad pendiente condicionando por versión y por
// no-crecimiento (pending solo decrece). Cero filas = conflicto concurrente.
func (r *StockMovementRepo) DecrementPending(ctx context.Context, tenantID, id string, newPending decimal.Decimal, version int64) error {
	if newPending.IsNegative() {
		return domain.ErrInvalidInput
	}
	query := `
		UPDATE stock_movements
		SET pending_quantity = $1, version = version + 1
		WHERE tenant_id = $2 AND id = $3 AND version = $4 AND pending_quantity >= $1`
	tag, err := r.q.Exec(ctx, query, newPending, tenantID, id, version)
	if err != nil {
		return fmt.Errorf("decrement pending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// List kardex del tenant con filtros de producto/ubicación/fechas.
func (r *StockMovementRepo) List(ctx context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND (from_location_id = $%d OR to_location_id = $%d)", pos, pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovementRow(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy *string
	err := row.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.BatchID,
		&m.FromLocationID, &m.ToLocationID, &m.Quantity, &m.PendingQuantity,
		&m.ReferenceType, &m.ReferenceID, &m.Version, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.BatchID,
			&m.FromLocationID, &m.ToLocationID, &m.Quantity, &m.PendingQuantity,
			&m.ReferenceType, &m.ReferenceID, &m.Version, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
