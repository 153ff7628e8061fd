package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de evento en el ledger de stock.
type MovementType string

const (
	MovementInitial    MovementType = "initial"    // alta del producto
	MovementEntry      MovementType = "entry"      // entrada
	MovementExit       MovementType = "exit"       // salida aprobada
	MovementAdjustment MovementType = "adjustment" // ajuste (cualquier signo)
)

// Valid indica si t es un tipo conocido.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInitial, MovementEntry, MovementExit, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement registro inmutable del ledger. Quantity es la magnitud (>= 0);
// el signo se deduce del tipo o, en ajustes, de NewStock - PreviousStock.
type StockMovement struct {
	ID                 string
	ProductID          string
	ProductReference   string
	ProductDesignation string
	Type               MovementType
	Quantity           decimal.Decimal
	PreviousStock      decimal.Decimal
	NewStock           decimal.Decimal
	UserID             string
	UserName           string
	Reason             string
	Notes              string
	CreatedAt          time.Time
}
