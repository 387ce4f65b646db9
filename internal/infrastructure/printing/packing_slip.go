package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/infrastructure/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.html
var templateFS embed.FS

// Party is a name plus printable address lines
type Party struct {
	Name  string
	Lines []string
}

// SlipLine is one order item on the slip
type SlipLine struct {
	SKU      string
	Name     string
	Quantity decimal.Decimal
	Notes    string
}

// PackingSlip is everything printed on a slip. It is assembled by the order
// service from the order and the records it references.
type PackingSlip struct {
	OrderNumber       string
	Reference         string
	Status            string
	OrderedAt         time.Time
	RequestedShipDate *time.Time
	CustomerCode      string
	CustomerName      string
	ProjectName       string
	Warehouse         Party
	ShipTo            Party
	BillTo            *Party
	CarrierName       string
	ServiceName       string
	TrackingNumber    string
	Notes             string
	Lines             []SlipLine
}

// TotalQuantity sums the line quantities
func (s *PackingSlip) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Quantity)
	}
	return total
}

type slipView struct {
	*PackingSlip
	CompanyName string
	PrintedAt   time.Time
	Total       decimal.Decimal
}

// SlipPrinter renders packing slips to HTML and PDF
type SlipPrinter struct {
	tmpl     *template.Template
	renderer PDFRenderer
	company  string
	paper    PaperSize
	now      func() time.Time
}

// NewSlipPrinter parses the slip template. renderer may be nil when only HTML
// output is needed.
func NewSlipPrinter(cfg config.PrintingConfig, renderer PDFRenderer) (*SlipPrinter, error) {
	paper, err := ParsePaperSize(cfg.PaperSize)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("packing_slip.html").
		Funcs(slipFuncs(language.English)).
		ParseFS(templateFS, "templates/packing_slip.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "failed to parse packing slip template", err)
	}
	return &SlipPrinter{
		tmpl:     tmpl,
		renderer: renderer,
		company:  cfg.CompanyName,
		paper:    paper,
		now:      time.Now,
	}, nil
}

// HTML renders the slip document
func (p *SlipPrinter) HTML(slip *PackingSlip) (string, error) {
	view := slipView{
		PackingSlip: slip,
		CompanyName: p.company,
		PrintedAt:   p.now().UTC(),
		Total:       slip.TotalQuantity(),
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render packing slip", err)
	}
	return buf.String(), nil
}

// PDF renders the slip and prints it
func (p *SlipPrinter) PDF(ctx context.Context, slip *PackingSlip) ([]byte, error) {
	if p.renderer == nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "no PDF renderer configured", nil)
	}
	html, err := p.HTML(slip)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(ctx, html, p.paper)
}

func slipFuncs(tag language.Tag) template.FuncMap {
	printer := message.NewPrinter(tag)
	upper := cases.Upper(tag)
	title := cases.Title(tag)
	return template.FuncMap{
		"upper":    upper.String,
		"title":    title.String,
		"inc":      func(i int) int { return i + 1 },
		"qty":      func(d decimal.Decimal) string { return formatQuantity(printer, d) },
		"date":     func(v any) string { return formatTime(v, "2006-01-02") },
		"datetime": func(v any) string { return formatTime(v, "2006-01-02 15:04 MST") },
	}
}

// formatQuantity groups thousands and keeps up to four decimals
func formatQuantity(p *message.Printer, d decimal.Decimal) string {
	return p.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(4)))
}

func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(layout)
	}
	return ""
}
