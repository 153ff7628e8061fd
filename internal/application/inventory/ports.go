package inventory

import (
	"context"

	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo lo escrito por los tres repositorios.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		requests repository.ExitRequestRepository,
		movements repository.StockMovementRepository,
	) error) error
}

// ReportInvalidator descarta el último reporte de alertas cacheado tras un cambio de stock.
type ReportInvalidator interface {
	InvalidateReport(ctx context.Context) error
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateReport(context.Context) error { return nil }

// OrNoop devuelve inv o un invalidador que no hace nada si inv es nil.
func OrNoop(inv ReportInvalidator) ReportInvalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// InvalidateReport descarta el reporte cacheado tras una operación ya confirmada.
// Un fallo no revierte la operación: se registra y el reporte viejo dura hasta su TTL.
func InvalidateReport(ctx context.Context, inv ReportInvalidator, log *logger.Logger) {
	if err := inv.InvalidateReport(ctx); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar el reporte de alertas cacheado")
	}
}
