package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
)

// AlertsHandler reporte de alertas y control del monitor periódico (protegido).
type AlertsHandler struct {
	detection *alerts.DetectionUseCase
	monitor   *alerts.Monitor
	pdf       alerts.PDFRenderer
}

// NewAlertsHandler construye el handler. pdf puede ser nil (la ruta del PDF responde 404).
func NewAlertsHandler(detection *alerts.DetectionUseCase, monitor *alerts.Monitor, pdf alerts.PDFRenderer) *AlertsHandler {
	return &AlertsHandler{detection: detection, monitor: monitor, pdf: pdf}
}

// Report godoc
// @Summary      Reporte de alertas vigente (cacheado)
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertReportDTO
// @Router       /api/alerts [get]
func (h *AlertsHandler) Report(c *fiber.Ctx) error {
	out, err := h.detection.Current(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ReportPDF godoc
// @Summary      Reporte de alertas en PDF
// @Tags         alerts
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/report.pdf [get]
func (h *AlertsHandler) ReportPDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "generación de PDF no disponible"})
	}
	rep, err := h.detection.Current(c.UserContext())
	if err != nil {
		return err
	}
	doc, err := h.pdf.AlertReport("Alertas de inventario", rep)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="alertas-inventario.pdf"`)
	return c.Send(doc)
}

// Scan godoc
// @Summary      Ejecutar un ciclo de detección y despacho ahora
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DispatchResultDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/scan [post]
func (h *AlertsHandler) Scan(c *fiber.Ctx) error {
	res, err := h.monitor.TriggerNow(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DispatchResultDTO{
		Findings: res.Findings,
		Sent:     res.Sent,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
	})
}

// MonitorStatus godoc
// @Summary      Estado del monitor periódico
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MonitorStatusDTO
// @Router       /api/alerts/monitor [get]
func (h *AlertsHandler) MonitorStatus(c *fiber.Ctx) error {
	return c.JSON(h.monitor.Status())
}

// StartMonitor godoc
// @Summary      Activar el monitor periódico
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MonitorStatusDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/alerts/monitor/start [post]
func (h *AlertsHandler) StartMonitor(c *fiber.Ctx) error {
	if err := h.monitor.Activate(principalFrom(c)); err != nil {
		return err
	}
	return c.JSON(h.monitor.Status())
}

// StopMonitor godoc
// @Summary      Desactivar el monitor periódico
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MonitorStatusDTO
// @Router       /api/alerts/monitor/stop [post]
func (h *AlertsHandler) StopMonitor(c *fiber.Ctx) error {
	h.monitor.Deactivate()
	return c.JSON(h.monitor.Status())
}
