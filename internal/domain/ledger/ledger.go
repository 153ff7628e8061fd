// Package ledger contiene las reglas puras del ledger de stock: cómo un cambio de stock
// se convierte en un movimiento y cómo se verifica la cadena de movimientos de un producto.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// Actor quien origina el movimiento. El nombre se guarda como snapshot.
type Actor struct {
	UserID   string
	UserName string
}

// Change cambio de stock solicitado. Delta lleva signo: positivo suma, negativo resta.
type Change struct {
	Type   entity.MovementType
	Delta  decimal.Decimal
	Actor  Actor
	Reason string
	Notes  string
}

// Apply valida el cambio contra el tipo de movimiento, actualiza p.CurrentStock y devuelve
// el movimiento a persistir. Un resultado negativo devuelve ErrInsufficientStock y no modifica p.
func Apply(p *entity.Product, ch Change, now time.Time) (*entity.StockMovement, error) {
	if p == nil {
		return nil, domain.ErrNotFound
	}
	switch ch.Type {
	case entity.MovementInitial:
		if ch.Delta.IsNegative() {
			return nil, domain.Invalid("el stock inicial no puede ser negativo")
		}
	case entity.MovementEntry:
		if !ch.Delta.IsPositive() {
			return nil, domain.Invalid("la cantidad de entrada debe ser mayor que cero")
		}
	case entity.MovementExit:
		if !ch.Delta.IsNegative() {
			return nil, domain.Invalid("una salida debe restar stock")
		}
	case entity.MovementAdjustment:
		if ch.Delta.IsZero() {
			return nil, domain.Invalid("el ajuste no puede ser cero")
		}
	default:
		return nil, domain.Invalid("tipo de movimiento desconocido %q", ch.Type)
	}

	prev := p.CurrentStock
	if ch.Type == entity.MovementInitial {
		prev = decimal.Zero
	}
	next := prev.Add(ch.Delta)
	if next.IsNegative() {
		return nil, domain.ErrInsufficientStock
	}

	p.CurrentStock = next
	p.UpdatedAt = now
	return &entity.StockMovement{
		ID:                 uuid.New().String(),
		ProductID:          p.ID,
		ProductReference:   p.Reference,
		ProductDesignation: p.Designation,
		Type:               ch.Type,
		Quantity:           ch.Delta.Abs(),
		PreviousStock:      prev,
		NewStock:           next,
		UserID:             ch.Actor.UserID,
		UserName:           ch.Actor.UserName,
		Reason:             ch.Reason,
		Notes:              ch.Notes,
		CreatedAt:          now,
	}, nil
}

// SignedDelta devuelve el delta con signo que representa el movimiento.
// En ajustes el signo sale de NewStock - PreviousStock.
func SignedDelta(m entity.StockMovement) decimal.Decimal {
	switch m.Type {
	case entity.MovementExit:
		return m.Quantity.Neg()
	case entity.MovementAdjustment:
		if m.NewStock.LessThan(m.PreviousStock) {
			return m.Quantity.Neg()
		}
		return m.Quantity
	default:
		return m.Quantity
	}
}

// ReplayError describe el primer punto en que la cadena de movimientos no cuadra.
// Index = len(movimientos) indica que la cadena es válida pero no coincide con el stock actual.
type ReplayError struct {
	Index      int
	MovementID string
	Reason     string
}

func (e *ReplayError) Error() string {
	if e.MovementID == "" {
		return fmt.Sprintf("ledger inconsistente en posición %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("ledger inconsistente en movimiento %s (posición %d): %s", e.MovementID, e.Index, e.Reason)
}

// Replay reconstruye el stock recorriendo los movimientos en orden de creación desde el inicial
// y lo compara con current. Devuelve el stock reconstruido aunque haya error.
func Replay(current decimal.Decimal, movements []entity.StockMovement) (decimal.Decimal, error) {
	ordered := make([]entity.StockMovement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	if len(ordered) == 0 {
		return decimal.Zero, &ReplayError{Index: 0, Reason: "sin movimiento inicial"}
	}
	if ordered[0].Type != entity.MovementInitial {
		return decimal.Zero, &ReplayError{Index: 0, MovementID: ordered[0].ID, Reason: "el primer movimiento no es el inicial"}
	}

	running := decimal.Zero
	for i, m := range ordered {
		if i > 0 && m.Type == entity.MovementInitial {
			return running, &ReplayError{Index: i, MovementID: m.ID, Reason: "movimiento inicial repetido"}
		}
		if m.Quantity.IsNegative() {
			return running, &ReplayError{Index: i, MovementID: m.ID, Reason: "cantidad negativa"}
		}
		if !m.PreviousStock.Equal(running) {
			return running, &ReplayError{Index: i, MovementID: m.ID,
				Reason: fmt.Sprintf("stock previo %s, se esperaba %s", m.PreviousStock, running)}
		}
		if m.Type == entity.MovementAdjustment && !m.NewStock.Sub(m.PreviousStock).Abs().Equal(m.Quantity) {
			return running, &ReplayError{Index: i, MovementID: m.ID, Reason: "la magnitud del ajuste no coincide"}
		}
		want := m.PreviousStock.Add(SignedDelta(m))
		if !m.NewStock.Equal(want) {
			return running, &ReplayError{Index: i, MovementID: m.ID,
				Reason: fmt.Sprintf("stock nuevo %s, se esperaba %s", m.NewStock, want)}
		}
		if m.NewStock.IsNegative() {
			return running, &ReplayError{Index: i, MovementID: m.ID, Reason: "stock negativo"}
		}
		running = m.NewStock
	}

	if !running.Equal(current) {
		return running, &ReplayError{Index: len(ordered),
			Reason: fmt.Sprintf("stock actual %s, el ledger da %s", current, running)}
	}
	return running, nil
}
