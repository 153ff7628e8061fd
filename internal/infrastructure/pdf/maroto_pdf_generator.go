// Package pdf genera el reporte de alertas de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STOCK BAJO: Ref | Designación | Ubicación | Stock | Mín | %│
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONSUMO: Ref | Designación | Prom/día | Rec/día | Aum. %   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 180, Green: 20, Blue: 20}
	colorWarning  = &props.Color{Red: 200, Green: 120, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ alerts.PDFRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa alerts.PDFRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// AlertReport genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoPDFGenerator) AlertReport(title string, r dto.AlertReportDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor("inventario-salidas", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow(fmt.Sprintf("STOCK BAJO (%d)", len(r.StockAlerts))))
	if len(r.StockAlerts) == 0 {
		m.AddRows(emptyRow("Sin productos bajo el mínimo."))
	} else {
		m.AddRows(lowStockHeaderRow())
		m.AddRows(lowStockRows(r.StockAlerts)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionRow(fmt.Sprintf("CONSUMO ANÓMALO (%d)", len(r.ConsumptionAlerts))))
	if len(r.ConsumptionAlerts) == 0 {
		m.AddRows(emptyRow("Sin consumos anómalos."))
	} else {
		m.AddRows(consumptionHeaderRow())
		m.AddRows(consumptionRows(r.ConsumptionAlerts)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, r dto.AlertReportDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func sectionRow(label string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2}),
	))
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
	}))
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func lowStockHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Ref.", 2, align.Left),
		headerCell("Designación", 4, align.Left),
		headerCell("Ubicación", 2, align.Left),
		headerCell("Stock", 1, align.Right),
		headerCell("Mín.", 1, align.Right),
		headerCell("%", 2, align.Right),
	)
}

func lowStockRows(list []dto.LowStockAlertDTO) []core.Row {
	out := make([]core.Row, 0, len(list))
	for _, a := range list {
		color := colorWarning
		if a.Severity == "critical" {
			color = colorCritical
		}
		out = append(out, row.New(6).Add(
			cell(a.Reference, 2, align.Left),
			cell(a.Designation, 4, align.Left),
			cell(nonEmpty(a.Location, "-"), 2, align.Left),
			cell(a.CurrentStock.String(), 1, align.Right),
			cell(a.MinStock.String(), 1, align.Right),
			col.New(2).Add(text.New(a.Percentage.StringFixed(2)+"%", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: color, Top: 1, Right: 1,
			})),
		))
	}
	return out
}

func consumptionHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Ref.", 2, align.Left),
		headerCell("Designación", 4, align.Left),
		headerCell("Prom./día", 2, align.Right),
		headerCell("Reciente/día", 2, align.Right),
		headerCell("Aumento", 2, align.Right),
	)
}

func consumptionRows(list []dto.ConsumptionAlertDTO) []core.Row {
	out := make([]core.Row, 0, len(list))
	for _, a := range list {
		out = append(out, row.New(6).Add(
			cell(a.Reference, 2, align.Left),
			cell(a.Designation, 4, align.Left),
			cell(a.AverageDaily.StringFixed(2), 2, align.Right),
			cell(a.RecentDaily.StringFixed(2), 2, align.Right),
			cell("+"+a.PercentageIncrease.StringFixed(2)+"%", 2, align.Right),
		))
	}
	return out
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Reporte generado automáticamente por el monitor de inventario. "+
				"Los valores reflejan el stock al momento de la detección.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
