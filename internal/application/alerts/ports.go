// Package alerts orquesta el motor de detección: cachea el último reporte, arma una notificación
// por suscriptor según sus preferencias, la entrega y programa el ciclo periódico.
package alerts

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
)

// ReportCache último reporte de detección. GetReport devuelve nil, nil si no hay nada cacheado.
type ReportCache interface {
	GetReport(ctx context.Context) (*dto.AlertReportDTO, error)
	SetReport(ctx context.Context, r dto.AlertReportDTO) error
	InvalidateReport(ctx context.Context) error
}

// CycleLock lock entre instancias para que un solo proceso ejecute el ciclo a la vez.
type CycleLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (release func(), acquired bool, err error)
}

// Attachment adjunto de un mensaje.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message contenido listo para el canal de entrega.
type Message struct {
	To          string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender canal de entrega (SMTP u otro).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// PDFRenderer genera el PDF de un reporte de alertas.
type PDFRenderer interface {
	AlertReport(title string, r dto.AlertReportDTO) ([]byte, error)
}

// Principal actor que opera el monitor.
type Principal struct {
	UserID string
	Name   string
	Role   string
}
