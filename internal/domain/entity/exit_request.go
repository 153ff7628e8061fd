package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitRequestStatus estado de una solicitud de salida. Pending es el único estado no terminal.
type ExitRequestStatus string

const (
	ExitPending  ExitRequestStatus = "pending"
	ExitApproved ExitRequestStatus = "approved"
	ExitRejected ExitRequestStatus = "rejected"
)

// ExitRequest solicitud de retiro de stock. Cantidad y snapshot del producto quedan fijos al crearla.
type ExitRequest struct {
	ID                 string
	ProductID          string
	ProductReference   string
	ProductDesignation string
	Quantity           decimal.Decimal
	RequestedBy        string
	RequestedAt        time.Time
	Status             ExitRequestStatus
	ApprovedBy         string
	ApprovedAt         *time.Time
	Reason             string
	Notes              string
}

// IsPending indica si la solicitud aún admite una decisión.
func (r *ExitRequest) IsPending() bool { return r.Status == ExitPending }

// ExitRequestFilter filtros opcionales del listado.
type ExitRequestFilter struct {
	Status      ExitRequestStatus
	RequestedBy string
}
