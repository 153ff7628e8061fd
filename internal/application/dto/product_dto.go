package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. InitialStock genera el movimiento inicial.
type CreateProductRequest struct {
	Reference    string          `json:"reference"`
	Designation  string          `json:"designation"`
	Category     string          `json:"category"`
	Location     string          `json:"location"`
	Unit         string          `json:"unit"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	PhotoRef     string          `json:"photo_ref"`
}

// UpdateProductRequest lista blanca de campos editables. Claves desconocidas se rechazan al decodificar.
type UpdateProductRequest struct {
	Designation *string          `json:"designation"`
	Category    *string          `json:"category"`
	Location    *string          `json:"location"`
	Unit        *string          `json:"unit"`
	MinStock    *decimal.Decimal `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock"`
	PhotoRef    *string          `json:"photo_ref"`
}

// ToEntity convierte la petición en el whitelist de dominio.
func (r UpdateProductRequest) ToEntity() entity.ProductUpdate {
	return entity.ProductUpdate{
		Designation: r.Designation,
		Category:    r.Category,
		Location:    r.Location,
		Unit:        r.Unit,
		MinStock:    r.MinStock,
		MaxStock:    r.MaxStock,
		PhotoRef:    r.PhotoRef,
	}
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Reference    string          `json:"reference"`
	Designation  string          `json:"designation"`
	Category     string          `json:"category"`
	Location     string          `json:"location"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	PhotoRef     string          `json:"photo_ref,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ToProductResponse mapea la entidad a la respuesta.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Reference:    p.Reference,
		Designation:  p.Designation,
		Category:     p.Category,
		Location:     p.Location,
		Unit:         p.Unit,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		PhotoRef:     p.PhotoRef,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
