package alerts

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer convierte una Notification en asunto, texto plano y HTML con números en formato local.
type Renderer struct {
	printer *message.Printer
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

type lowRow struct {
	Severity, Reference, Designation, Location string
	Current, Min, Percentage                   string
}

type consumptionRow struct {
	Reference, Designation    string
	Average, Recent, Increase string
	Exits                     int
}

type view struct {
	Subject     string
	UserName    string
	GeneratedAt string
	Total       int
	Low         []lowRow
	Consumption []consumptionRow
}

// NewRenderer carga las plantillas embebidas. tag define el formato numérico (language.Spanish por defecto).
func NewRenderer(tag language.Tag) (*Renderer, error) {
	if tag == language.Und {
		tag = language.Spanish
	}
	txt, err := texttemplate.ParseFS(templateFS, "templates/notification.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("plantilla de texto: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/notification.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("plantilla html: %w", err)
	}
	return &Renderer{printer: message.NewPrinter(tag), text: txt, html: html}, nil
}

// Render arma el mensaje combinado de un suscriptor.
func (r *Renderer) Render(n Notification) (Message, error) {
	v := view{
		UserName:    n.UserName,
		GeneratedAt: n.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
	}
	for _, f := range n.Findings() {
		switch f := f.(type) {
		case domainalerts.LowStockFinding:
			v.Low = append(v.Low, lowRow{
				Severity:    severityLabel(f.Severity),
				Reference:   f.Reference,
				Designation: f.Designation,
				Location:    f.Location,
				Current:     r.number(f.CurrentStock),
				Min:         r.number(f.MinStock),
				Percentage:  r.number(f.Percentage),
			})
		case domainalerts.ConsumptionFinding:
			v.Consumption = append(v.Consumption, consumptionRow{
				Reference:   f.Reference,
				Designation: f.Designation,
				Average:     r.number(f.AverageDaily),
				Recent:      r.number(f.RecentDaily),
				Increase:    r.number(f.PercentageIncrease),
				Exits:       f.ExitCount,
			})
		default:
			return Message{}, fmt.Errorf("tipo de hallazgo no soportado: %T", f)
		}
	}
	v.Total = len(v.Low) + len(v.Consumption)
	v.Subject = r.printer.Sprintf("Alertas de inventario: %d de stock bajo, %d de consumo", len(v.Low), len(v.Consumption))

	var txt, html bytes.Buffer
	if err := r.text.Execute(&txt, v); err != nil {
		return Message{}, fmt.Errorf("render texto: %w", err)
	}
	if err := r.html.Execute(&html, v); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	return Message{
		To:      n.To,
		ToName:  n.UserName,
		Subject: v.Subject,
		Text:    txt.String(),
		HTML:    html.String(),
	}, nil
}

// number enteros sin decimales; el resto con dos decimales y separador local.
func (r *Renderer) number(d decimal.Decimal) string {
	if d.IsInteger() {
		return r.printer.Sprintf("%d", d.IntPart())
	}
	return r.printer.Sprintf("%.2f", d.InexactFloat64())
}

func severityLabel(s domainalerts.Severity) string {
	switch s {
	case domainalerts.SeverityCritical:
		return "CRÍTICO"
	case domainalerts.SeverityWarning:
		return "ADVERTENCIA"
	}
	return string(s)
}
