package alerts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// Kind tipo de hallazgo.
type Kind string

const (
	KindLowStock    Kind = "low_stock"
	KindConsumption Kind = "consumption"
)

// Severity severidad de un hallazgo de stock bajo.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ProductRef datos del producto que acompañan a cada hallazgo.
type ProductRef struct {
	ProductID   string
	Reference   string
	Designation string
	Category    string
	Location    string
	Unit        string
}

func refOf(p *entity.Product) ProductRef {
	return ProductRef{
		ProductID:   p.ID,
		Reference:   p.Reference,
		Designation: p.Designation,
		Category:    p.Category,
		Location:    p.Location,
		Unit:        p.Unit,
	}
}

// Finding hallazgo del motor. Solo LowStockFinding y ConsumptionFinding lo implementan.
type Finding interface {
	Kind() Kind
	Product() ProductRef
	sealed()
}

// LowStockFinding producto con stock actual <= stock mínimo.
type LowStockFinding struct {
	ProductRef
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	Percentage   decimal.Decimal // CurrentStock / MinStock * 100, 0 si MinStock = 0
	Severity     Severity
}

func (LowStockFinding) Kind() Kind            { return KindLowStock }
func (f LowStockFinding) Product() ProductRef { return f.ProductRef }
func (LowStockFinding) sealed()               {}

// ConsumptionFinding producto cuyo consumo diario reciente supera el promedio histórico.
type ConsumptionFinding struct {
	ProductRef
	CurrentStock       decimal.Decimal
	AverageDaily       decimal.Decimal
	RecentDaily        decimal.Decimal
	PercentageIncrease decimal.Decimal
	ExitCount          int
	HistoricalDays     int
	RecentDays         int
}

func (ConsumptionFinding) Kind() Kind            { return KindConsumption }
func (f ConsumptionFinding) Product() ProductRef { return f.ProductRef }
func (ConsumptionFinding) sealed()               {}

// Report resultado de una pasada del motor.
type Report struct {
	GeneratedAt time.Time
	LowStock    []LowStockFinding
	Consumption []ConsumptionFinding
}

// Empty indica si no hubo hallazgos.
func (r Report) Empty() bool { return len(r.LowStock) == 0 && len(r.Consumption) == 0 }

// Findings devuelve todos los hallazgos: primero stock bajo, luego consumo.
func (r Report) Findings() []Finding {
	out := make([]Finding, 0, len(r.LowStock)+len(r.Consumption))
	for _, f := range r.LowStock {
		out = append(out, f)
	}
	for _, f := range r.Consumption {
		out = append(out, f)
	}
	return out
}

// Partition separa una lista de hallazgos por tipo conservando el orden.
func Partition(findings []Finding) (low []LowStockFinding, consumption []ConsumptionFinding) {
	for _, f := range findings {
		switch v := f.(type) {
		case LowStockFinding:
			low = append(low, v)
		case ConsumptionFinding:
			consumption = append(consumption, v)
		}
	}
	return low, consumption
}
