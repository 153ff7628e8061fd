package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los productos con baja lógica no se devuelven: para los lectores son ErrNotFound.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	// Update persiste solo los campos editables; nunca current_stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal, at time.Time) error
	// ListActive lista por referencia. limit <= 0 devuelve todos.
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
