package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/products/:id/movements.
// Type: entry (quantity > 0) o adjustment (quantity con signo, distinta de cero).
type RegisterMovementRequest struct {
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
	Notes    string          `json:"notes"`
}

// MovementResponse registro del ledger.
type MovementResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	ProductReference   string          `json:"product_reference"`
	ProductDesignation string          `json:"product_designation"`
	Type               string          `json:"movement_type"`
	Quantity           decimal.Decimal `json:"quantity"`
	PreviousStock      decimal.Decimal `json:"previous_stock"`
	NewStock           decimal.Decimal `json:"new_stock"`
	UserID             string          `json:"user_id"`
	UserName           string          `json:"user_name"`
	Reason             string          `json:"reason,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToMovementResponse mapea un movimiento.
func ToMovementResponse(m entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		ProductReference:   m.ProductReference,
		ProductDesignation: m.ProductDesignation,
		Type:               string(m.Type),
		Quantity:           m.Quantity,
		PreviousStock:      m.PreviousStock,
		NewStock:           m.NewStock,
		UserID:             m.UserID,
		UserName:           m.UserName,
		Reason:             m.Reason,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
	}
}

// ToMovementResponses mapea una lista de movimientos (nunca nil).
func ToMovementResponses(list []entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// LedgerVerification resultado de reproducir el ledger de un producto.
type LedgerVerification struct {
	ProductID     string          `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	ReplayedStock decimal.Decimal `json:"replayed_stock"`
	Movements     int             `json:"movements"`
	Consistent    bool            `json:"consistent"`
	Problem       string          `json:"problem,omitempty"`
}
