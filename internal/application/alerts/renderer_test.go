package alerts_test

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
)

var generatedAt = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleNotification() alerts.Notification {
	return alerts.Notification{
		To:          "ana@empresa.co",
		UserName:    "Ana Gerente",
		GeneratedAt: generatedAt,
		StockAlerts: []domainalerts.LowStockFinding{
			{
				ProductRef:   domainalerts.ProductRef{ProductID: "a", Reference: "A-1", Designation: "Guantes nitrilo", Location: "E1"},
				CurrentStock: d("5"), MinStock: d("10"), Percentage: d("50"), Severity: domainalerts.SeverityCritical,
			},
			{
				ProductRef:   domainalerts.ProductRef{ProductID: "b", Reference: "B-2", Designation: "Tapabocas", Location: "E2"},
				CurrentStock: d("6"), MinStock: d("10"), Percentage: d("60"), Severity: domainalerts.SeverityWarning,
			},
		},
		ConsumptionAlerts: []domainalerts.ConsumptionFinding{
			{
				ProductRef:   domainalerts.ProductRef{ProductID: "c", Reference: "C-3", Designation: "Cinta aislante"},
				CurrentStock: d("40"), AverageDaily: d("2.5"), RecentDaily: d("4"), PercentageIncrease: d("60"), ExitCount: 8,
			},
		},
	}
}

func TestRenderer_TextoCombinado(t *testing.T) {
	r, err := alerts.NewRenderer(language.Spanish)
	require.NoError(t, err)

	msg, err := r.Render(sampleNotification())
	require.NoError(t, err)

	assert.Equal(t, "ana@empresa.co", msg.To)
	assert.Equal(t, "Alertas de inventario: 2 de stock bajo, 1 de consumo", msg.Subject)

	g := goldie.New(t)
	g.Assert(t, "notification_text", []byte(msg.Text))
}

func TestRenderer_HTMLAgrupaPorTipo(t *testing.T) {
	r, err := alerts.NewRenderer(language.Spanish)
	require.NoError(t, err)

	n := sampleNotification()
	n.StockAlerts[0].Designation = "Guantes <talla M>"
	msg, err := r.Render(n)
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "<h3>Stock bajo</h3>")
	assert.Contains(t, msg.HTML, "<h3>Consumo anómalo</h3>")
	assert.Contains(t, msg.HTML, "Guantes &lt;talla M&gt;", "el HTML escapa los datos")
	assert.Contains(t, msg.HTML, "<td>CRÍTICO</td>")
}

func TestRenderer_SoloConsumo(t *testing.T) {
	r, err := alerts.NewRenderer(language.Spanish)
	require.NoError(t, err)

	n := sampleNotification()
	n.StockAlerts = nil
	msg, err := r.Render(n)
	require.NoError(t, err)

	assert.NotContains(t, msg.Text, "STOCK BAJO")
	assert.Contains(t, msg.Text, "CONSUMO ANÓMALO")
	assert.NotContains(t, msg.HTML, "Stock bajo")
	assert.Equal(t, "Alertas de inventario: 0 de stock bajo, 1 de consumo", msg.Subject)
}
