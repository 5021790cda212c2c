// Package pdf genera la representación impresa de una factura ZATCA emitida.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + VAT         │  Tipo, N° Factura + Fecha    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  COMPRADOR (solo facturas estándar)                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Subtotal         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total sin IVA / IVA / Total con IVA                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR TLV + UUID + ICV + hash                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 108, Blue: 53}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes. El QR codifica el payload TLV tal cual.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, inv *entity.IssuedInvoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(inv), true).
		WithAuthor(inv.SellerName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if inv.BuyerName != "" {
		m.AddRows(buyerRow(inv))
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(inv.Lines, inv.Currency)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// documentTitle título según el perfil.
func documentTitle(inv *entity.IssuedInvoice) string {
	if inv.Profile == string(pkgzatca.ProfileStandard) {
		return "Tax Invoice"
	}
	return "Simplified Tax Invoice"
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor + VAT (izq) y tipo, número y fecha (der).
func headerRow(inv *entity.IssuedInvoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.SellerName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("VAT: "+inv.SellerVAT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(inv), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Issue date: "+inv.IssuedAt.UTC().Format("2006-01-02 15:04:05"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// buyerRow: datos del comprador.
func buyerRow(inv *entity.IssuedInvoice) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("BUYER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   VAT: %s", inv.BuyerName, nonEmpty(inv.BuyerVAT, "-")),
				props.Text{Size: 9, Top: 6}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Qty", 1, align.Center),
		h("Description", 5, align.Left),
		h("Unit price", 2, align.Right),
		h("VAT %", 1, align.Center),
		h("Net amount", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea.
func tableDetailRows(lines []entity.LineItem, currency string) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				money(l.UnitPrice, currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				l.TaxPercent.StringFixed(0)+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				money(l.LineExtensionAmount, currency),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(inv *entity.IssuedInvoice) core.Row {
	label := func(s string, size float64, c *props.Color) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: size, Align: align.Right, Color: c, Right: 2})
	}
	value := func(s string, size float64, c *props.Color) core.Component {
		return text.New(s, props.Text{Size: size, Align: align.Right, Color: c, Right: 1})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(4).Add(
			label("Total excluding VAT:", 9, nil),
			label("Total VAT:", 9, nil),
			label("Total including VAT:", 10, colorPrimary),
		),
		col.New(3).Add(
			value(money(inv.NetTotal, inv.Currency), 9, nil),
			value(money(inv.TaxTotal, inv.Currency), 9, nil),
			value(money(inv.GrandTotal, inv.Currency), 10, colorPrimary),
		),
		col.New(2),
	)
}

// footerRows: QR + datos de la cadena.
func footerRows(inv *entity.IssuedInvoice) []core.Row {
	meta := fmt.Sprintf("UUID: %s\nICV: %d\nInvoice hash: %s", inv.UUID, inv.ICV, inv.Hash)
	return []core.Row{
		row.New(50).Add(
			col.New(4).Add(code.NewQr(inv.QRPayload, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New(meta, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
				text.New(documentTitle(inv), props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 30, Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con dos decimales y separador de miles: 1234.5 → "1,234.50 SAR".
func money(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	return sign + groupThousands(intPart) + frac + " " + currency
}

// groupThousands inserta comas de miles en un string numérico sin decimales.
// Ej: "25000" → "25,000", "1000000" → "1,000,000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
