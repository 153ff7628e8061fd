// Package exitrequest implementa el flujo de solicitudes de salida:
// pending -> approved | rejected, con la aprobación descontando stock de forma atómica.
package exitrequest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/ledger"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// UseCase casos de uso de solicitudes de salida.
type UseCase struct {
	txRunner inventory.TxRunner
	products repository.ProductRepository
	requests repository.ExitRequestRepository
	cache    inventory.ReportInvalidator
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(
	txRunner inventory.TxRunner,
	products repository.ProductRepository,
	requests repository.ExitRequestRepository,
	cache inventory.ReportInvalidator,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		products: products,
		requests: requests,
		cache:    inventory.OrNoop(cache),
		log:      logger.Nop(),
		now:      time.Now,
	}
}

// WithLogger asigna el logger del componente.
func (uc *UseCase) WithLogger(log *logger.Logger) *UseCase {
	uc.log = log
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra una solicitud pendiente. La verificación de stock aquí es orientativa:
// no reserva nada, la verificación definitiva ocurre al aprobar.
func (uc *UseCase) Create(ctx context.Context, _ ledger.Actor, in dto.CreateExitRequest) (*entity.ExitRequest, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	requestedBy := strings.TrimSpace(in.RequestedBy)
	if in.ProductID == "" {
		return nil, domain.Invalid("productId es obligatorio")
	}
	if requestedBy == "" {
		return nil, domain.Invalid("requestedBy es obligatorio")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad debe ser mayor que cero")
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.CurrentStock.LessThan(in.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	req := &entity.ExitRequest{
		ID:                 uuid.New().String(),
		ProductID:          product.ID,
		ProductReference:   product.Reference,
		ProductDesignation: product.Designation,
		Quantity:           in.Quantity,
		RequestedBy:        requestedBy,
		RequestedAt:        uc.now(),
		Status:             entity.ExitPending,
		Reason:             strings.TrimSpace(in.Reason),
	}
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get devuelve una solicitud por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.ExitRequest, error) {
	return uc.requests.GetByID(ctx, id)
}

// List lista solicitudes por fecha de solicitud descendente.
func (uc *UseCase) List(ctx context.Context, filter entity.ExitRequestFilter) ([]*entity.ExitRequest, error) {
	switch filter.Status {
	case "", entity.ExitPending, entity.ExitApproved, entity.ExitRejected:
	default:
		return nil, domain.Invalid("estado %q desconocido", filter.Status)
	}
	return uc.requests.List(ctx, filter)
}

// Decide aplica la decisión del body de PUT /exit-requests/:id.
// approvedBy firma la decisión y el movimiento; el UserID sigue siendo el del token.
func (uc *UseCase) Decide(ctx context.Context, actor ledger.Actor, id string, in dto.DecideExitRequest) (*entity.ExitRequest, error) {
	approvedBy := strings.TrimSpace(in.ApprovedBy)
	if approvedBy == "" {
		return nil, domain.Invalid("approvedBy es obligatorio")
	}
	actor.UserName = approvedBy
	switch entity.ExitRequestStatus(in.Status) {
	case entity.ExitApproved:
		return uc.Approve(ctx, actor, id, in.Notes)
	case entity.ExitRejected:
		return uc.Reject(ctx, actor, id, in.Notes)
	default:
		return nil, domain.Invalid("status debe ser approved o rejected")
	}
}

// Approve en una sola transacción: bloquea la solicitud y luego el producto, verifica stock,
// descuenta, agrega el movimiento exit y marca la solicitud como aprobada.
// Dos aprobaciones concurrentes sobre el mismo producto se serializan en el bloqueo del producto.
func (uc *UseCase) Approve(ctx context.Context, actor ledger.Actor, id, notes string) (*entity.ExitRequest, error) {
	var out *entity.ExitRequest
	err := uc.txRunner.Run(ctx, func(
		products repository.ProductRepository,
		requests repository.ExitRequestRepository,
		movements repository.StockMovementRepository,
	) error {
		req, err := requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.ErrRequestNotPending
		}
		product, err := products.GetForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		now := uc.now()
		mov, err := ledger.Apply(product, ledger.Change{
			Type:   entity.MovementExit,
			Delta:  req.Quantity.Neg(),
			Actor:  actor,
			Reason: fmt.Sprintf("solicitud de salida %s", req.ID),
			Notes:  req.Reason,
		}, now)
		if err != nil {
			return err
		}
		if err := products.UpdateStock(ctx, product.ID, product.CurrentStock, now); err != nil {
			return err
		}
		if err := movements.Append(ctx, mov); err != nil {
			return err
		}
		req.Status = entity.ExitApproved
		req.ApprovedBy = actor.UserName
		req.ApprovedAt = &now
		req.Notes = notes
		if err := requests.UpdateDecision(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.InvalidateReport(ctx, uc.cache, uc.log)
	return out, nil
}

// Reject marca la solicitud como rechazada. No toca stock ni ledger.
func (uc *UseCase) Reject(ctx context.Context, actor ledger.Actor, id, notes string) (*entity.ExitRequest, error) {
	var out *entity.ExitRequest
	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		requests repository.ExitRequestRepository,
		_ repository.StockMovementRepository,
	) error {
		req, err := requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return domain.ErrRequestNotPending
		}
		now := uc.now()
		req.Status = entity.ExitRejected
		req.ApprovedBy = actor.UserName
		req.ApprovedAt = &now
		req.Notes = notes
		if err := requests.UpdateDecision(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete elimina la solicitud. Un movimiento ya aplicado no se revierte.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.requests.Delete(ctx, id)
}
