package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/ledger"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

var admin = ledger.Actor{UserID: "u-1", UserName: "Admin"}

type countingCache struct{ calls int }

func (c *countingCache) InvalidateReport(context.Context) error {
	c.calls++
	return nil
}

type failingCache struct{}

func (failingCache) InvalidateReport(context.Context) error { return errors.New("redis: connection refused") }

func setup(t *testing.T) (*inventory.StockUseCase, *countingCache) {
	t.Helper()
	s := memory.NewStore()
	cache := &countingCache{}
	uc := inventory.NewStockUseCase(
		memory.NewTxRunner(s),
		memory.NewProductRepository(s),
		memory.NewStockMovementRepository(s),
		cache,
	)
	return uc, cache
}

func newProduct(t *testing.T, uc *inventory.StockUseCase, ref string, initial int64) *entity.Product {
	t.Helper()
	p, err := uc.RegisterProduct(context.Background(), admin, dto.CreateProductRequest{
		Reference:    ref,
		Designation:  "Cable " + ref,
		InitialStock: decimal.NewFromInt(initial),
		MinStock:     decimal.NewFromInt(5),
		MaxStock:     decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return p
}

func TestRegisterProduct_CreaMovimientoInicial(t *testing.T) {
	ctx := context.Background()
	uc, cache := setup(t)
	p := newProduct(t, uc, "CAB-1", 25)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 1, cache.calls)

	history, err := uc.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.MovementInitial, history[0].Type)
	assert.True(t, history[0].PreviousStock.IsZero())
	assert.True(t, history[0].NewStock.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "CAB-1", history[0].ProductReference)
}

func TestRegisterProduct_ReferenciaDuplicada(t *testing.T) {
	uc, _ := setup(t)
	newProduct(t, uc, "CAB-1", 1)
	_, err := uc.RegisterProduct(context.Background(), admin, dto.CreateProductRequest{
		Reference: "CAB-1", Designation: "Otro",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterProduct_Validaciones(t *testing.T) {
	uc, _ := setup(t)
	cases := []dto.CreateProductRequest{
		{Designation: "sin referencia"},
		{Reference: "X"},
		{Reference: "X", Designation: "neg", InitialStock: decimal.NewFromInt(-1)},
		{Reference: "X", Designation: "max<min", MinStock: decimal.NewFromInt(10), MaxStock: decimal.NewFromInt(5)},
	}
	for _, in := range cases {
		_, err := uc.RegisterProduct(context.Background(), admin, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in.Designation)
	}
}

func TestRegisterMovement_EntradaYAjuste(t *testing.T) {
	ctx := context.Background()
	uc, cache := setup(t)
	p := newProduct(t, uc, "CAB-2", 10)

	m, err := uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{
		Type: entity.MovementEntry, Quantity: decimal.NewFromInt(15), Reason: "compra",
	})
	require.NoError(t, err)
	assert.True(t, m.NewStock.Equal(decimal.NewFromInt(25)))

	m, err = uc.RegisterMovementFromRequest(ctx, admin, p.ID, dto.RegisterMovementRequest{
		Type: "adjustment", Quantity: decimal.NewFromInt(-3), Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, m.NewStock.Equal(decimal.NewFromInt(22)))
	assert.Equal(t, 3, cache.calls)

	v, err := uc.VerifyLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent, v.Problem)
	assert.True(t, v.ReplayedStock.Equal(decimal.NewFromInt(22)))
}

func TestRegisterMovement_Rechazos(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	p := newProduct(t, uc, "CAB-3", 4)

	_, err := uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{Type: entity.MovementExit, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las salidas no se registran directamente")

	_, err = uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{Type: entity.MovementEntry, Quantity: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{Type: entity.MovementAdjustment, Quantity: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = uc.RegisterMovement(ctx, admin, "nope", inventory.MovementInput{Type: entity.MovementEntry, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	history, err := uc.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, history, 1, "ningún rechazo deja movimientos")
}

func TestListMovements_FiltraPorTipoYRango(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	p := newProduct(t, uc, "CAB-4", 10)
	_, err := uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{Type: entity.MovementEntry, Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	all, err := uc.ListMovements(ctx, from, to, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	entries, err := uc.ListMovements(ctx, from, to, "entry")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = uc.ListMovements(ctx, from, to, "transfer")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ListMovements(ctx, to, from, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterMovement_FalloAlInvalidarCacheSeRegistra(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	s := memory.NewStore()
	uc := inventory.NewStockUseCase(
		memory.NewTxRunner(s),
		memory.NewProductRepository(s),
		memory.NewStockMovementRepository(s),
		failingCache{},
	).WithLogger(logger.New(logger.Config{Env: "test", Level: "warn", Output: &buf}))

	p := newProduct(t, uc, "CAB-5", 10)
	_, err := uc.RegisterMovement(ctx, admin, p.ID, inventory.MovementInput{Type: entity.MovementEntry, Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err, "la operación confirmada no falla por la caché")

	assert.Contains(t, buf.String(), "no se pudo invalidar el reporte de alertas cacheado")
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
