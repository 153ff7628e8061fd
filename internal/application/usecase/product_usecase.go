package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
)

// ProductUseCase consulta y edición del catálogo. El alta vive en inventory.StockUseCase porque
// genera el movimiento inicial; el stock se maneja solo vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// GetByID obtiene un producto activo por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// Update aplica solo los campos de la lista blanca.
func (uc *ProductUseCase) Update(ctx context.Context, id string, upd entity.ProductUpdate) (*dto.ProductResponse, error) {
	if upd.IsEmpty() {
		return nil, domain.Invalid("no hay campos para actualizar")
	}
	if upd.Designation != nil && strings.TrimSpace(*upd.Designation) == "" {
		return nil, domain.Invalid("designation no puede quedar vacía")
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(product)
	if product.MinStock.IsNegative() || product.MaxStock.IsNegative() {
		return nil, domain.Invalid("las cantidades no pueden ser negativas")
	}
	if product.MaxStock.IsPositive() && product.MaxStock.LessThan(product.MinStock) {
		return nil, domain.Invalid("max_stock debe ser mayor o igual a min_stock")
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// List lista productos activos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListActive(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

// Delete da de baja lógica el producto. Su ledger se conserva.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.SoftDelete(ctx, id, time.Now())
}
