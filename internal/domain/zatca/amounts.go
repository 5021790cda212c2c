package zatca

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

// DefaultPrecision decimales de los montos.
const DefaultPrecision int32 = 2

var hundred = decimal.NewFromInt(100)

// Round redondea a precision decimales, mitad lejos de cero (2.345 -> 2.35, -2.345 -> -2.35).
func Round(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Round(precision)
}

// FormatAmount formato fijo de montos: sin notación científica, signo explícito solo si es negativo.
func FormatAmount(d decimal.Decimal, precision int32) string {
	return d.Round(precision).StringFixed(precision)
}

// FormatPrice formatea un precio unitario: con precision decimales salvo que tenga más,
// en cuyo caso se escribe completo (sin ceros finales) para no alterar el valor.
func FormatPrice(d decimal.Decimal, precision int32) string {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 && int32(len(s)-i-1) > precision {
		return s
	}
	return FormatAmount(d, precision)
}

// LineAmounts devuelve (extensión, impuesto) de la línea con la regla de redondeo:
// extensión = round(precio * cantidad); impuesto = round(extensión * tasa / 100).
func LineAmounts(l entity.LineItem, precision int32) (decimal.Decimal, decimal.Decimal) {
	ext := Round(l.UnitPrice.Mul(l.Quantity), precision)
	tax := Round(ext.Mul(l.TaxPercent).Div(hundred), precision)
	return ext, tax
}

// ComputeLine completa LineExtensionAmount y TaxAmount.
func ComputeLine(l *entity.LineItem, precision int32) {
	l.LineExtensionAmount, l.TaxAmount = LineAmounts(*l, precision)
}

// ComputeTotals recalcula todas las líneas y los totales de la factura.
func ComputeTotals(inv *entity.Invoice, precision int32) {
	var net, tax decimal.Decimal
	for i := range inv.Lines {
		ComputeLine(&inv.Lines[i], precision)
		net = net.Add(inv.Lines[i].LineExtensionAmount)
		tax = tax.Add(inv.Lines[i].TaxAmount)
	}
	inv.LineExtensionTotal = net
	inv.TaxTotal = tax
	inv.TotalWithTax = net.Add(tax)
}

// TaxSubtotal desglose por categoría y tasa (cac:TaxSubtotal).
type TaxSubtotal struct {
	Category      string
	Percent       decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
}

// TaxSubtotals agrupa las líneas por (categoría, tasa) en orden determinista.
func TaxSubtotals(lines []entity.LineItem) []TaxSubtotal {
	var out []TaxSubtotal
	for _, l := range lines {
		found := false
		for i := range out {
			if out[i].Category == l.TaxCategory && out[i].Percent.Equal(l.TaxPercent) {
				out[i].TaxableAmount = out[i].TaxableAmount.Add(l.LineExtensionAmount)
				out[i].TaxAmount = out[i].TaxAmount.Add(l.TaxAmount)
				found = true
				break
			}
		}
		if !found {
			out = append(out, TaxSubtotal{
				Category:      l.TaxCategory,
				Percent:       l.TaxPercent,
				TaxableAmount: l.LineExtensionAmount,
				TaxAmount:     l.TaxAmount,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Percent.LessThan(out[j].Percent)
	})
	return out
}
