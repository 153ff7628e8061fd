package alerts

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// DetectionUseCase carga la foto del catálogo y las salidas de la ventana y ejecuta el motor.
type DetectionUseCase struct {
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	thresholds domainalerts.Thresholds
	cache      ReportCache
	log        *logger.Logger
	now        func() time.Time
}

// NewDetectionUseCase construye el caso de uso. cache puede ser nil.
func NewDetectionUseCase(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	thresholds domainalerts.Thresholds,
	cache ReportCache,
	log *logger.Logger,
) *DetectionUseCase {
	return &DetectionUseCase{
		products:   products,
		movements:  movements,
		thresholds: thresholds,
		cache:      cache,
		log:        log,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DetectionUseCase) WithClock(now func() time.Time) *DetectionUseCase {
	uc.now = now
	return uc
}

// Scan ejecuta el motor y guarda el reporte en caché.
func (uc *DetectionUseCase) Scan(ctx context.Context) (domainalerts.Report, error) {
	now := uc.now()
	products, err := uc.products.ListActive(ctx, 0, 0)
	if err != nil {
		return domainalerts.Report{}, err
	}
	exits, err := uc.movements.ListByRange(ctx, uc.thresholds.Since(now), now, entity.MovementExit)
	if err != nil {
		return domainalerts.Report{}, err
	}
	rep := domainalerts.Detect(products, exits, now, uc.thresholds)
	if uc.cache != nil {
		if err := uc.cache.SetReport(ctx, dto.ToAlertReportDTO(rep)); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo cachear el reporte de alertas")
		}
	}
	return rep, nil
}

// Current devuelve el reporte cacheado o, si no hay, ejecuta una detección.
func (uc *DetectionUseCase) Current(ctx context.Context) (dto.AlertReportDTO, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetReport(ctx)
		if err != nil {
			uc.log.Warn().Err(err).Msg("lectura de caché de alertas fallida")
		} else if cached != nil {
			return *cached, nil
		}
	}
	rep, err := uc.Scan(ctx)
	if err != nil {
		return dto.AlertReportDTO{}, err
	}
	return dto.ToAlertReportDTO(rep), nil
}
