package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un ítem del catálogo con su stock actual.
// CurrentStock solo cambia por una aprobación de salida o un movimiento registrado en el ledger.
type Product struct {
	ID           string
	Reference    string // código único
	Designation  string
	Category     string
	Location     string
	Unit         string
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	PhotoRef     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time // borrado lógico
}

// IsDeleted indica si el producto fue dado de baja.
func (p *Product) IsDeleted() bool { return p.DeletedAt != nil }

// ProductUpdate lista blanca de campos editables. Nil = no tocar.
// El stock no está aquí: se modifica solo mediante movimientos.
type ProductUpdate struct {
	Designation *string
	Category    *string
	Location    *string
	Unit        *string
	MinStock    *decimal.Decimal
	MaxStock    *decimal.Decimal
	PhotoRef    *string
}

// IsEmpty indica si no hay ningún campo para actualizar.
func (u ProductUpdate) IsEmpty() bool {
	return u.Designation == nil && u.Category == nil && u.Location == nil && u.Unit == nil &&
		u.MinStock == nil && u.MaxStock == nil && u.PhotoRef == nil
}

// Apply copia sobre p los campos presentes en u.
func (u ProductUpdate) Apply(p *Product) {
	if u.Designation != nil {
		p.Designation = *u.Designation
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.MinStock != nil {
		p.MinStock = *u.MinStock
	}
	if u.MaxStock != nil {
		p.MaxStock = *u.MaxStock
	}
	if u.PhotoRef != nil {
		p.PhotoRef = *u.PhotoRef
	}
}
