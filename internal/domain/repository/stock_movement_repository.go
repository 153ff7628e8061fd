package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// StockMovementRepository ledger de solo inserción. No hay Update ni Delete.
type StockMovementRepository interface {
	Append(ctx context.Context, m *entity.StockMovement) error
	// ListByProduct en orden de creación. from/to nil = sin límite.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]entity.StockMovement, error)
	// ListByRange movimientos en [from, to]; movementType vacío = todos.
	ListByRange(ctx context.Context, from, to time.Time, movementType entity.MovementType) ([]entity.StockMovement, error)
}
