package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, product_reference, product_designation, movement_type, quantity,
	previous_stock, new_stock, user_id, user_name, reason, notes, created_at`

// StockMovementRepo ledger sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta un movimiento.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.ProductReference, m.ProductDesignation, string(m.Type), m.Quantity,
		m.PreviousStock, m.NewStock, m.UserID, m.UserName, m.Reason, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct movimientos del producto en orden de creación.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]entity.StockMovement, error) {
	if !validID(productID) {
		return []entity.StockMovement{}, nil
	}
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	return collectMovements(rows)
}

// ListByRange movimientos en [from, to], opcionalmente de un tipo.
func (r *StockMovementRepo) ListByRange(ctx context.Context, from, to time.Time, movementType entity.MovementType) ([]entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE created_at >= $1 AND created_at <= $2 AND ($3 = '' OR movement_type = $3)
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, from, to, string(movementType))
	if err != nil {
		return nil, fmt.Errorf("list movements by range: %w", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]entity.StockMovement, error) {
	defer rows.Close()
	list := make([]entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		var t string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductReference, &m.ProductDesignation, &t, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.UserID, &m.UserName, &m.Reason, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(t)
		list = append(list, m)
	}
	return list, rows.Err()
}
