package repository

import (
	"context"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// ExitRequestRepository define el puerto de persistencia para ExitRequest.
type ExitRequestRepository interface {
	Create(ctx context.Context, req *entity.ExitRequest) error
	GetByID(ctx context.Context, id string) (*entity.ExitRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ExitRequest, error)
	// List ordena por requested_at descendente.
	List(ctx context.Context, filter entity.ExitRequestFilter) ([]*entity.ExitRequest, error)
	// UpdateDecision guarda status, approved_by, approved_at y notes.
	UpdateDecision(ctx context.Context, req *entity.ExitRequest) error
	Delete(ctx context.Context, id string) error
}
