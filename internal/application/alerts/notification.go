package alerts

import (
	"time"

	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
)

// Notification contenido por suscriptor, ya filtrado según sus preferencias.
type Notification struct {
	To                string
	UserName          string
	GeneratedAt       time.Time
	StockAlerts       []domainalerts.LowStockFinding
	ConsumptionAlerts []domainalerts.ConsumptionFinding
}

// Findings hallazgos de la notificación: stock bajo primero.
func (n Notification) Findings() []domainalerts.Finding {
	return domainalerts.Report{LowStock: n.StockAlerts, Consumption: n.ConsumptionAlerts}.Findings()
}

// Empty indica si no hay nada que enviar.
func (n Notification) Empty() bool {
	return len(n.StockAlerts) == 0 && len(n.ConsumptionAlerts) == 0
}

// BuildNotification filtra el reporte por las preferencias del usuario.
// ok = false si el usuario no es suscriptor o si no queda ningún hallazgo.
func BuildNotification(u *entity.User, rep domainalerts.Report) (Notification, bool) {
	if u == nil || !u.IsSubscriber() {
		return Notification{}, false
	}
	n := Notification{
		To:          u.NotificationEmail,
		UserName:    u.Name,
		GeneratedAt: rep.GeneratedAt,
	}
	if u.StockAlerts {
		n.StockAlerts = rep.LowStock
	}
	if u.ConsumptionAlerts {
		n.ConsumptionAlerts = rep.Consumption
	}
	return n, !n.Empty()
}

// ReportOf reconstruye un reporte con los hallazgos de la notificación (para el PDF adjunto).
func (n Notification) ReportOf() domainalerts.Report {
	return domainalerts.Report{
		GeneratedAt: n.GeneratedAt,
		LowStock:    n.StockAlerts,
		Consumption: n.ConsumptionAlerts,
	}
}
