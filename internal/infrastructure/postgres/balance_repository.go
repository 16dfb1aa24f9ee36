package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con
// pool o tx). Las filas en cero nunca se borran; la escritura condiciona por
// versión y el índice único (tenant, producto, lote, ubicación) resuelve la
// carrera de dos inserciones concurrentes.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `id, tenant_id, product_id, batch_id, location_id, quantity, reserved_quantity, version, created_at, updated_at`

// Get obtiene el saldo; si no hay fila devuelve un saldo en cero (Version 0,
// no persistido).
func (r *BalanceRepo) Get(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	return r.get(ctx, tenantID, productID, batchID, locationID, false)
}

// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	return r.get(ctx, tenantID, productID, batchID, locationID, true)
}

func (r *BalanceRepo) get(ctx context.Context, tenantID, productID string, batchID *string, locationID string, forUpdate bool) (*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND product_id = $2 AND batch_id IS NOT DISTINCT FROM $3 AND location_id = $4`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var b entity.Balance
	err := r.q.QueryRow(ctx, query, tenantID, productID, batchID, locationID).Scan(
		&b.ID, &b.TenantID, &b.ProductID, &b.BatchID, &b.LocationID,
		&b.Quantity, &b.ReservedQuantity, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{
				TenantID:         tenantID,
				ProductID:        productID,
				BatchID:          batchID,
				LocationID:       locationID,
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Save inserta la fila si Version == 0 o actualiza condicionando por la
// versión leída. Cero filas afectadas (o choque con el índice único en la
// inserción) = otra operación ganó la escritura: ErrConcurrentModification.
func (r *BalanceRepo) Save(ctx context.Context, balance *entity.Balance) error {
	if balance.Version == 0 {
		if balance.ID == "" {
			balance.ID = uuid.New().String()
		}
		query := `
			INSERT INTO inventory_balances (id, tenant_id, product_id, batch_id, location_id, quantity, reserved_quantity, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now(), now())`
		_, err := r.q.Exec(ctx, query,
			balance.ID, balance.TenantID, balance.ProductID, balance.BatchID,
			balance.LocationID, balance.Quantity, balance.ReservedQuantity,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domain.ErrConcurrentModification
			}
			return fmt.Errorf("insert balance: %w", err)
		}
		balance.Version = 1
		return nil
	}

	query := `
		UPDATE inventory_balances
		SET quantity = $1, reserved_quantity = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND version = $4`
	tag, err := r.q.Exec(ctx, query, balance.Quantity, balance.ReservedQuantity, balance.ID, balance.Version)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	balance.Version++
	return nil
}

// ListByLocation lista los saldos de una ubicación.
func (r *BalanceRepo) ListByLocation(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND location_id = $2
		ORDER BY product_id, batch_id NULLS FIRST
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list balances by location: %w", err)
	}
	defer rows.Close()
	return scanBalances(rows)
}

// ListByProduct lista los saldos de un producto en todas las ubicaciones.
func (r *BalanceRepo) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY location_id, batch_id NULLS FIRST`
	rows, err := r.q.Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("list balances by product: %w", err)
	}
	defer rows.Close()
	return scanBalances(rows)
}

func scanBalances(rows pgx.Rows) ([]*entity.Balance, error) {
	var list []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.BatchID, &b.LocationID,
			&b.Quantity, &b.ReservedQuantity, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
