package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (read committed).
type TxRunner struct {
	pool        *pgxpool.Pool
	timeout     time.Duration
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. timeout acota la tx completa; lockTimeout la espera por un bloqueo.
func NewTxRunner(pool *pgxpool.Pool, timeout, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Timeout de bloqueo, fallo de serialización o deadlock se devuelven como domain.ErrTxContention.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	requests repository.ExitRequestRepository,
	movements repository.StockMovementRepository,
) error) error {
	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return r.translate(parent, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		ms := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			return r.translate(parent, fmt.Errorf("lock_timeout: %w", err))
		}
	}

	if err := fn(NewProductRepository(tx), NewExitRequestRepository(tx), NewStockMovementRepository(tx)); err != nil {
		return r.translate(parent, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return r.translate(parent, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func (r *TxRunner) translate(parent context.Context, err error) error {
	if isContention(err) {
		return fmt.Errorf("%w: %v", domain.ErrTxContention, err)
	}
	// Venció el timeout propio de la tx, no el del llamador
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w: %v", domain.ErrTxContention, err)
	}
	return err
}
