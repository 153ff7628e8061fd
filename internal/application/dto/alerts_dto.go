package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-salidas/internal/domain/alerts"
)

// LowStockAlertDTO hallazgo de stock bajo.
type LowStockAlertDTO struct {
	ProductID    string          `json:"product_id"`
	Reference    string          `json:"reference"`
	Designation  string          `json:"designation"`
	Category     string          `json:"category,omitempty"`
	Location     string          `json:"location,omitempty"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Percentage   decimal.Decimal `json:"percentage"`
	Severity     string          `json:"severity"`
}

// ConsumptionAlertDTO hallazgo de consumo anómalo.
type ConsumptionAlertDTO struct {
	ProductID          string          `json:"product_id"`
	Reference          string          `json:"reference"`
	Designation        string          `json:"designation"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	AverageDaily       decimal.Decimal `json:"average_daily"`
	RecentDaily        decimal.Decimal `json:"recent_daily"`
	PercentageIncrease decimal.Decimal `json:"percentage_increase"`
	ExitCount          int             `json:"exit_count"`
}

// AlertReportDTO reporte de detección. También es el formato cacheado en Redis.
type AlertReportDTO struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	StockAlerts       []LowStockAlertDTO    `json:"stock_alerts"`
	ConsumptionAlerts []ConsumptionAlertDTO `json:"consumption_alerts"`
}

// MonitorStatusDTO estado del monitor periódico.
type MonitorStatusDTO struct {
	Active      bool       `json:"active"`
	Running     bool       `json:"running"`
	Interval    string     `json:"interval"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
	LastSent    int        `json:"last_sent"`
	LastFailed  int        `json:"last_failed"`
	ActivatedBy string     `json:"activated_by,omitempty"`
}

// DispatchResultDTO resultado de un ciclo manual.
type DispatchResultDTO struct {
	Findings int `json:"findings"`
	Sent     int `json:"sent"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ToAlertReportDTO mapea el reporte del motor.
func ToAlertReportDTO(r alerts.Report) AlertReportDTO {
	out := AlertReportDTO{
		GeneratedAt:       r.GeneratedAt,
		StockAlerts:       make([]LowStockAlertDTO, 0, len(r.LowStock)),
		ConsumptionAlerts: make([]ConsumptionAlertDTO, 0, len(r.Consumption)),
	}
	for _, f := range r.LowStock {
		out.StockAlerts = append(out.StockAlerts, LowStockAlertDTO{
			ProductID:    f.ProductID,
			Reference:    f.Reference,
			Designation:  f.Designation,
			Category:     f.Category,
			Location:     f.Location,
			CurrentStock: f.CurrentStock,
			MinStock:     f.MinStock,
			Percentage:   f.Percentage,
			Severity:     string(f.Severity),
		})
	}
	for _, f := range r.Consumption {
		out.ConsumptionAlerts = append(out.ConsumptionAlerts, ConsumptionAlertDTO{
			ProductID:          f.ProductID,
			Reference:          f.Reference,
			Designation:        f.Designation,
			CurrentStock:       f.CurrentStock,
			AverageDaily:       f.AverageDaily,
			RecentDaily:        f.RecentDaily,
			PercentageIncrease: f.PercentageIncrease,
			ExitCount:          f.ExitCount,
		})
	}
	return out
}
