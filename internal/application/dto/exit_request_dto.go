package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// CreateExitRequest body para POST /api/exit-requests.
// ProductReference y ProductDesignation se aceptan pero la foto se toma siempre del producto.
type CreateExitRequest struct {
	ProductID          string          `json:"productId"`
	ProductReference   string          `json:"productReference,omitempty"`
	ProductDesignation string          `json:"productDesignation,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	RequestedBy        string          `json:"requestedBy"`
	Reason             string          `json:"reason"`
}

// DecideExitRequest body para PUT /api/exit-requests/:id.
type DecideExitRequest struct {
	Status     string `json:"status"` // approved | rejected
	ApprovedBy string `json:"approvedBy"`
	Notes      string `json:"notes"`
}

// ExitRequestResponse salida de una solicitud.
type ExitRequestResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"productId"`
	ProductReference   string          `json:"productReference"`
	ProductDesignation string          `json:"productDesignation"`
	Quantity           decimal.Decimal `json:"quantity"`
	RequestedBy        string          `json:"requestedBy"`
	RequestedAt        time.Time       `json:"requestedAt"`
	Status             string          `json:"status"`
	ApprovedBy         string          `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty"`
	Reason             string          `json:"reason,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// ToExitRequestResponse mapea la entidad a la respuesta.
func ToExitRequestResponse(r *entity.ExitRequest) ExitRequestResponse {
	return ExitRequestResponse{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		ProductReference:   r.ProductReference,
		ProductDesignation: r.ProductDesignation,
		Quantity:           r.Quantity,
		RequestedBy:        r.RequestedBy,
		RequestedAt:        r.RequestedAt,
		Status:             string(r.Status),
		ApprovedBy:         r.ApprovedBy,
		ApprovedAt:         r.ApprovedAt,
		Reason:             r.Reason,
		Notes:              r.Notes,
	}
}
