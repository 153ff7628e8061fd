package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/ledger"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// StockUseCase alta de productos y movimientos del ledger (entradas y ajustes) con bloqueo
// de fila (SELECT FOR UPDATE) y Commit/Rollback. Las salidas solo nacen de aprobar una solicitud.
type StockUseCase struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cache     ReportInvalidator
	log       *logger.Logger
	now       func() time.Time
}

// NewStockUseCase construye el caso de uso. cache puede ser nil.
func NewStockUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	cache ReportInvalidator,
) *StockUseCase {
	return &StockUseCase{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		cache:     OrNoop(cache),
		log:       logger.Nop(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *StockUseCase) WithClock(now func() time.Time) *StockUseCase {
	uc.now = now
	return uc
}

// WithLogger asigna el logger del componente.
func (uc *StockUseCase) WithLogger(log *logger.Logger) *StockUseCase {
	uc.log = log
	return uc
}

// MovementInput entrada para registrar una entrada o un ajuste.
type MovementInput struct {
	Type     entity.MovementType
	Quantity decimal.Decimal // entry: > 0; adjustment: con signo
	Reason   string
	Notes    string
}

// RegisterProduct crea el producto y su movimiento inicial en la misma transacción.
func (uc *StockUseCase) RegisterProduct(ctx context.Context, actor ledger.Actor, in dto.CreateProductRequest) (*entity.Product, error) {
	in.Reference = strings.TrimSpace(in.Reference)
	in.Designation = strings.TrimSpace(in.Designation)
	if in.Reference == "" || in.Designation == "" {
		return nil, domain.Invalid("reference y designation son obligatorios")
	}
	if in.InitialStock.IsNegative() || in.MinStock.IsNegative() || in.MaxStock.IsNegative() {
		return nil, domain.Invalid("las cantidades no pueden ser negativas")
	}
	if in.MaxStock.IsPositive() && in.MaxStock.LessThan(in.MinStock) {
		return nil, domain.Invalid("max_stock debe ser mayor o igual a min_stock")
	}

	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Reference:   in.Reference,
		Designation: in.Designation,
		Category:    in.Category,
		Location:    in.Location,
		Unit:        in.Unit,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		PhotoRef:    in.PhotoRef,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		products repository.ProductRepository,
		_ repository.ExitRequestRepository,
		movements repository.StockMovementRepository,
	) error {
		if _, err := products.GetByReference(ctx, in.Reference); err == nil {
			return domain.ErrDuplicate
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		mov, err := ledger.Apply(product, ledger.Change{
			Type:   entity.MovementInitial,
			Delta:  in.InitialStock,
			Actor:  actor,
			Reason: "alta de producto",
		}, now)
		if err != nil {
			return err
		}
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		return movements.Append(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	InvalidateReport(ctx, uc.cache, uc.log)
	return product, nil
}

// RegisterMovement bloquea el producto, aplica la entrada o el ajuste y agrega el movimiento al ledger.
func (uc *StockUseCase) RegisterMovement(ctx context.Context, actor ledger.Actor, productID string, in MovementInput) (*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id es obligatorio")
	}
	var delta decimal.Decimal
	switch in.Type {
	case entity.MovementEntry:
		if !in.Quantity.IsPositive() {
			return nil, domain.Invalid("la cantidad de entrada debe ser mayor que cero")
		}
		delta = in.Quantity
	case entity.MovementAdjustment:
		if in.Quantity.IsZero() {
			return nil, domain.Invalid("el ajuste no puede ser cero")
		}
		delta = in.Quantity
	case entity.MovementExit:
		return nil, domain.Invalid("las salidas se registran aprobando una solicitud")
	default:
		return nil, domain.Invalid("tipo de movimiento %q no permitido", in.Type)
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		products repository.ProductRepository,
		_ repository.ExitRequestRepository,
		movements repository.StockMovementRepository,
	) error {
		// Bloquea la fila del producto para serializar con aprobaciones concurrentes
		product, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		now := uc.now()
		mov, err = ledger.Apply(product, ledger.Change{
			Type:   in.Type,
			Delta:  delta,
			Actor:  actor,
			Reason: in.Reason,
			Notes:  in.Notes,
		}, now)
		if err != nil {
			return err
		}
		if err := products.UpdateStock(ctx, product.ID, product.CurrentStock, now); err != nil {
			return err
		}
		return movements.Append(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	InvalidateReport(ctx, uc.cache, uc.log)
	return mov, nil
}

// History auditoría de un producto en orden de creación.
func (uc *StockUseCase) History(ctx context.Context, productID string, from, to *time.Time) ([]entity.StockMovement, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.Invalid("rango de fechas inválido")
	}
	if _, err := uc.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return uc.movements.ListByProduct(ctx, productID, from, to)
}

// VerifyLedger reproduce el ledger del producto y lo compara con su stock actual.
func (uc *StockUseCase) VerifyLedger(ctx context.Context, productID string) (*dto.LedgerVerification, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.ListByProduct(ctx, productID, nil, nil)
	if err != nil {
		return nil, err
	}
	replayed, rerr := ledger.Replay(product.CurrentStock, movs)
	out := &dto.LedgerVerification{
		ProductID:     product.ID,
		CurrentStock:  product.CurrentStock,
		ReplayedStock: replayed,
		Movements:     len(movs),
		Consistent:    rerr == nil,
	}
	if rerr != nil {
		out.Problem = rerr.Error()
	}
	return out, nil
}

// ListMovements consulta el ledger por rango de tiempo; movementType vacío = todos.
func (uc *StockUseCase) ListMovements(ctx context.Context, from, to time.Time, movementType string) ([]entity.StockMovement, error) {
	if to.Before(from) {
		return nil, domain.Invalid("rango de fechas inválido")
	}
	t := entity.MovementType(movementType)
	if movementType != "" && !t.Valid() {
		return nil, domain.Invalid("tipo de movimiento %q desconocido", movementType)
	}
	return uc.movements.ListByRange(ctx, from, to, t)
}
