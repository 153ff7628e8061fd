package alerts

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// DispatchResult conteo de un despacho.
type DispatchResult struct {
	Subscribers int
	Sent        int
	Skipped     int // suscriptores sin hallazgos tras filtrar por preferencias
	Failed      int
}

// Dispatcher entrega una notificación combinada por suscriptor. El fallo de uno no detiene al resto.
type Dispatcher struct {
	users    repository.UserRepository
	renderer *Renderer
	sender   Sender
	pdf      PDFRenderer // opcional: adjunta el reporte del suscriptor en PDF
	log      *logger.Logger
}

// NewDispatcher construye el despachador. pdf puede ser nil.
func NewDispatcher(users repository.UserRepository, renderer *Renderer, sender Sender, pdf PDFRenderer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{users: users, renderer: renderer, sender: sender, pdf: pdf, log: log}
}

// Dispatch solo devuelve error si no se pudo leer el directorio de suscriptores.
func (d *Dispatcher) Dispatch(ctx context.Context, rep domainalerts.Report) (DispatchResult, error) {
	var res DispatchResult
	if rep.Empty() {
		return res, nil
	}
	subs, err := d.users.ListSubscribers(ctx)
	if err != nil {
		return res, fmt.Errorf("listar suscriptores: %w", err)
	}
	res.Subscribers = len(subs)

	for _, u := range subs {
		n, ok := BuildNotification(u, rep)
		if !ok {
			res.Skipped++
			continue
		}
		if err := d.deliver(ctx, n); err != nil {
			res.Failed++
			d.log.Error().Err(err).Str("user_id", u.ID).Str("to", n.To).Msg("fallo al notificar alertas")
			continue
		}
		res.Sent++
		d.log.Info().Str("user_id", u.ID).Str("to", n.To).
			Int("stock_alerts", len(n.StockAlerts)).Int("consumption_alerts", len(n.ConsumptionAlerts)).
			Msg("alertas notificadas")
	}
	return res, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) error {
	msg, err := d.renderer.Render(n)
	if err != nil {
		return err
	}
	if d.pdf != nil {
		data, err := d.pdf.AlertReport("Alertas de inventario - "+n.UserName, dto.ToAlertReportDTO(n.ReportOf()))
		if err != nil {
			return fmt.Errorf("pdf adjunto: %w", err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Name:        "alertas-inventario.pdf",
			ContentType: "application/pdf",
			Data:        data,
		})
	}
	return d.sender.Send(ctx, msg)
}
