package inventory

import (
	"context"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/ledger"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
func (uc *StockUseCase) RegisterMovementFromRequest(ctx context.Context, actor ledger.Actor, productID string, in dto.RegisterMovementRequest) (*entity.StockMovement, error) {
	return uc.RegisterMovement(ctx, actor, productID, MovementInput{
		Type:     entity.MovementType(in.Type),
		Quantity: in.Quantity,
		Reason:   in.Reason,
		Notes:    in.Notes,
	})
}
