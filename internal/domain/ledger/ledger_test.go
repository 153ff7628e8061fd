package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/ledger"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newProduct() *entity.Product {
	return &entity.Product{ID: "p-1", Reference: "REF-001", Designation: "Guantes nitrilo"}
}

func TestApply_CadenaCompletaSeReproduce(t *testing.T) {
	p := newProduct()
	actor := ledger.Actor{UserID: "u-1", UserName: "Ana"}
	changes := []ledger.Change{
		{Type: entity.MovementInitial, Delta: dec("100"), Actor: actor},
		{Type: entity.MovementExit, Delta: dec("-30"), Actor: actor},
		{Type: entity.MovementEntry, Delta: dec("12.5"), Actor: actor},
		{Type: entity.MovementAdjustment, Delta: dec("-2.5"), Actor: actor},
		{Type: entity.MovementAdjustment, Delta: dec("4"), Actor: actor},
	}

	var movs []entity.StockMovement
	for i, ch := range changes {
		m, err := ledger.Apply(p, ch, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.False(t, m.Quantity.IsNegative(), "la cantidad se guarda como magnitud")
		assert.True(t, m.NewStock.Sub(m.PreviousStock).Equal(ledger.SignedDelta(*m)))
		movs = append(movs, *m)
	}

	assert.True(t, p.CurrentStock.Equal(dec("84")))
	got, err := ledger.Replay(p.CurrentStock, movs)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("84")))
}

func TestApply_SalidaMayorQueStock(t *testing.T) {
	p := newProduct()
	p.CurrentStock = dec("10")

	m, err := ledger.Apply(p, ledger.Change{Type: entity.MovementExit, Delta: dec("-11")}, t0)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, p.CurrentStock.Equal(dec("10")), "el producto no debe cambiar")
}

func TestApply_ValidacionesPorTipo(t *testing.T) {
	cases := []struct {
		name string
		ch   ledger.Change
	}{
		{"entrada cero", ledger.Change{Type: entity.MovementEntry, Delta: decimal.Zero}},
		{"entrada negativa", ledger.Change{Type: entity.MovementEntry, Delta: dec("-1")}},
		{"salida positiva", ledger.Change{Type: entity.MovementExit, Delta: dec("3")}},
		{"ajuste cero", ledger.Change{Type: entity.MovementAdjustment, Delta: decimal.Zero}},
		{"inicial negativo", ledger.Change{Type: entity.MovementInitial, Delta: dec("-5")}},
		{"tipo desconocido", ledger.Change{Type: "transfer", Delta: dec("1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newProduct()
			p.CurrentStock = dec("10")
			_, err := ledger.Apply(p, tc.ch, t0)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestReplay_DetectaRupturas(t *testing.T) {
	initial := entity.StockMovement{ID: "m1", Type: entity.MovementInitial, Quantity: dec("10"),
		PreviousStock: dec("0"), NewStock: dec("10"), CreatedAt: t0}
	exit := entity.StockMovement{ID: "m2", Type: entity.MovementExit, Quantity: dec("4"),
		PreviousStock: dec("10"), NewStock: dec("6"), CreatedAt: t0.Add(time.Hour)}

	t.Run("sin movimientos", func(t *testing.T) {
		_, err := ledger.Replay(decimal.Zero, nil)
		var re *ledger.ReplayError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, 0, re.Index)
	})

	t.Run("primero no es inicial", func(t *testing.T) {
		_, err := ledger.Replay(dec("6"), []entity.StockMovement{exit})
		var re *ledger.ReplayError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, "m2", re.MovementID)
	})

	t.Run("stock previo roto", func(t *testing.T) {
		bad := exit
		bad.PreviousStock = dec("9")
		bad.NewStock = dec("5")
		_, err := ledger.Replay(dec("5"), []entity.StockMovement{initial, bad})
		var re *ledger.ReplayError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, 1, re.Index)
	})

	t.Run("signo de salida invertido", func(t *testing.T) {
		bad := exit
		bad.NewStock = dec("14")
		_, err := ledger.Replay(dec("14"), []entity.StockMovement{initial, bad})
		assert.Error(t, err)
	})

	t.Run("stock actual distinto", func(t *testing.T) {
		got, err := ledger.Replay(dec("7"), []entity.StockMovement{initial, exit})
		var re *ledger.ReplayError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, 2, re.Index)
		assert.True(t, got.Equal(dec("6")))
	})

	t.Run("orden por fecha", func(t *testing.T) {
		got, err := ledger.Replay(dec("6"), []entity.StockMovement{exit, initial})
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("6")))
	})
}
