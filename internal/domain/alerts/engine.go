// Package alerts implementa el motor de detección: funciones puras sobre una foto del catálogo
// y las salidas del ledger. Mismas entradas y mismo now producen el mismo Report.
package alerts

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

const day = 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Thresholds parámetros del motor.
type Thresholds struct {
	CriticalPercent  decimal.Decimal // porcentaje <= este valor => critical
	AnomalyPercent   decimal.Decimal // aumento > este valor => anomalía
	MinExitMovements int             // salidas mínimas en la ventana de análisis
	LookbackDays     int
	RecentWindowDays int
}

// DefaultThresholds 50% crítico, 50% de aumento, 5 salidas, 30 días de historia, 3 de ventana reciente.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalPercent:  decimal.NewFromInt(50),
		AnomalyPercent:   decimal.NewFromInt(50),
		MinExitMovements: 5,
		LookbackDays:     30,
		RecentWindowDays: 3,
	}
}

// Since inicio de la ventana de análisis para now.
func (t Thresholds) Since(now time.Time) time.Time {
	return now.Add(-time.Duration(t.LookbackDays) * day)
}

// Detect analiza productos y salidas. Ignora productos con baja lógica y movimientos que no sean exit.
func Detect(products []*entity.Product, exits []entity.StockMovement, now time.Time, th Thresholds) Report {
	byProduct := make(map[string][]entity.StockMovement)
	for _, m := range exits {
		if m.Type != entity.MovementExit {
			continue
		}
		byProduct[m.ProductID] = append(byProduct[m.ProductID], m)
	}

	rep := Report{GeneratedAt: now}
	for _, p := range products {
		if p == nil || p.IsDeleted() {
			continue
		}
		if f, ok := lowStock(p, th); ok {
			rep.LowStock = append(rep.LowStock, f)
		}
		if f, ok := consumption(p, byProduct[p.ID], now, th); ok {
			rep.Consumption = append(rep.Consumption, f)
		}
	}

	sort.SliceStable(rep.LowStock, func(i, j int) bool {
		a, b := rep.LowStock[i], rep.LowStock[j]
		if !a.Percentage.Equal(b.Percentage) {
			return a.Percentage.LessThan(b.Percentage)
		}
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		return a.ProductID < b.ProductID
	})
	sort.SliceStable(rep.Consumption, func(i, j int) bool {
		a, b := rep.Consumption[i], rep.Consumption[j]
		if !a.PercentageIncrease.Equal(b.PercentageIncrease) {
			return a.PercentageIncrease.GreaterThan(b.PercentageIncrease)
		}
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		return a.ProductID < b.ProductID
	})
	return rep
}

func lowStock(p *entity.Product, th Thresholds) (LowStockFinding, bool) {
	if p.CurrentStock.GreaterThan(p.MinStock) {
		return LowStockFinding{}, false
	}
	raw := decimal.Zero
	if p.MinStock.IsPositive() {
		raw = p.CurrentStock.Div(p.MinStock).Mul(hundred)
	}
	// La severidad se decide sobre el valor exacto; el redondeo es solo de presentación.
	sev := SeverityWarning
	if raw.LessThanOrEqual(th.CriticalPercent) {
		sev = SeverityCritical
	}
	pct := raw.Round(2)
	return LowStockFinding{
		ProductRef:   refOf(p),
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		Percentage:   pct,
		Severity:     sev,
	}, true
}

func consumption(p *entity.Product, exits []entity.StockMovement, now time.Time, th Thresholds) (ConsumptionFinding, bool) {
	lookbackStart := th.Since(now)
	recentStart := now.Add(-time.Duration(th.RecentWindowDays) * day)

	var count, histCount int
	histSum, recentSum := decimal.Zero, decimal.Zero
	for _, m := range exits {
		at := m.CreatedAt
		if at.Before(lookbackStart) || at.After(now) {
			continue
		}
		count++
		if at.Before(recentStart) {
			histCount++
			histSum = histSum.Add(m.Quantity)
		} else {
			recentSum = recentSum.Add(m.Quantity)
		}
	}
	if count < th.MinExitMovements || histCount == 0 {
		return ConsumptionFinding{}, false
	}

	histDays := atLeastOne(th.LookbackDays - th.RecentWindowDays)
	recentDays := atLeastOne(th.RecentWindowDays)

	avg := histSum.Div(decimal.NewFromInt(int64(histDays)))
	recent := recentSum.Div(decimal.NewFromInt(int64(recentDays)))
	if !avg.IsPositive() || !recent.IsPositive() {
		return ConsumptionFinding{}, false
	}
	increase := recent.Sub(avg).Div(avg).Mul(hundred)
	if !increase.GreaterThan(th.AnomalyPercent) {
		return ConsumptionFinding{}, false
	}
	return ConsumptionFinding{
		ProductRef:         refOf(p),
		CurrentStock:       p.CurrentStock,
		AverageDaily:       avg.Round(2),
		RecentDaily:        recent.Round(2),
		PercentageIncrease: increase.Round(2),
		ExitCount:          count,
		HistoricalDays:     histDays,
		RecentDays:         recentDays,
	}, true
}

func atLeastOne(days int) int {
	if days < 1 {
		return 1
	}
	return days
}
