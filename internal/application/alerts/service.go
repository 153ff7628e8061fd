package alerts

import (
	"context"

	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// CycleResult resultado de un ciclo detección + despacho.
type CycleResult struct {
	Findings int
	DispatchResult
}

// Service compone detección y despacho en un ciclo.
type Service struct {
	detection  *DetectionUseCase
	dispatcher *Dispatcher
	log        *logger.Logger
}

// NewService construye el servicio.
func NewService(detection *DetectionUseCase, dispatcher *Dispatcher, log *logger.Logger) *Service {
	return &Service{detection: detection, dispatcher: dispatcher, log: log}
}

// RunCycle detecta y notifica. Los fallos de entrega quedan en el resultado, no en el error.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	rep, err := s.detection.Scan(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	res := CycleResult{Findings: len(rep.LowStock) + len(rep.Consumption)}
	dr, err := s.dispatcher.Dispatch(ctx, rep)
	res.DispatchResult = dr
	if err != nil {
		s.log.Error().Err(err).Msg("despacho de alertas interrumpido")
	}
	s.log.Info().Int("findings", res.Findings).Int("sent", dr.Sent).
		Int("skipped", dr.Skipped).Int("failed", dr.Failed).Msg("ciclo de alertas completado")
	return res, nil
}
