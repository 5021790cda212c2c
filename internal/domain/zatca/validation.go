package zatca

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// ValidationOptions parámetros de validación que dependen de la configuración.
type ValidationOptions struct {
	Profile   pkgzatca.Profile
	Precision int32
	// RequireChain exige ICV y PIH ya asignados (forma canónica).
	RequireChain bool
}

// ValidateInvoice valida campos obligatorios, direcciones, líneas y totales.
// Devuelve todos los fallos unidos con errors.Join; cada uno es un *ValidationError.
func ValidateInvoice(inv *entity.Invoice, opts ValidationOptions) error {
	if inv == nil {
		return NewValidationError("invoice", "", "factura nula")
	}
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	var errs []error
	add := func(field, value, msg string) {
		errs = append(errs, NewValidationError(field, value, msg))
	}

	if strings.TrimSpace(inv.ID) == "" {
		add("id", "", "el número de factura es obligatorio")
	}
	if _, err := uuid.Parse(inv.UUID); err != nil {
		add("uuid", inv.UUID, "UUID inválido")
	}
	if inv.IssuedAt.IsZero() {
		add("issued_at", "", "la fecha de emisión es obligatoria")
	}
	if !pkgzatca.ValidInvoiceTypeCodes[inv.TypeCode] {
		add("type_code", inv.TypeCode, "tipo de documento no soportado")
	}
	if len(inv.Currency) != 3 {
		add("currency", inv.Currency, "código de moneda ISO 4217 inválido")
	}
	if len(inv.TaxCurrency) != 3 {
		add("tax_currency", inv.TaxCurrency, "código de moneda ISO 4217 inválido")
	}
	if inv.PaymentMeansCode != "" && !pkgzatca.ValidPaymentMeansCodes[inv.PaymentMeansCode] {
		add("payment_means_code", inv.PaymentMeansCode, "medio de pago no soportado")
	}

	// Emisor
	if strings.TrimSpace(inv.Seller.Name) == "" {
		add("seller.name", "", "el nombre del emisor es obligatorio")
	}
	if err := pkgzatca.ValidateVATNumber(inv.Seller.VATNumber); err != nil {
		add("seller.vat_number", inv.Seller.VATNumber, err.Error())
	}
	errs = append(errs, validateParty("seller", inv.Seller)...)

	// Comprador
	if inv.Buyer == nil {
		if opts.Profile.BuyerRequired() {
			add("buyer", "", "el comprador es obligatorio en facturas estándar")
		}
	} else {
		if strings.TrimSpace(inv.Buyer.Name) == "" {
			add("buyer.name", "", "el nombre del comprador es obligatorio")
		}
		if inv.Buyer.VATNumber != "" {
			if err := pkgzatca.ValidateVATNumber(inv.Buyer.VATNumber); err != nil {
				add("buyer.vat_number", inv.Buyer.VATNumber, err.Error())
			}
		}
		errs = append(errs, validateParty("buyer", *inv.Buyer)...)
	}

	// Líneas y totales
	if len(inv.Lines) == 0 {
		add("lines", "", "la factura debe tener al menos una línea")
	} else {
		var sumNet, sumTax decimal.Decimal
		for i, l := range inv.Lines {
			errs = append(errs, validateLine(i, l, opts.Precision)...)
			sumNet = sumNet.Add(l.LineExtensionAmount)
			sumTax = sumTax.Add(l.TaxAmount)
		}
		p := opts.Precision
		if !Round(inv.LineExtensionTotal, p).Equal(Round(sumNet, p)) {
			add("line_extension_total", inv.LineExtensionTotal.String(),
				fmt.Sprintf("no coincide con la suma de líneas (%s)", FormatAmount(sumNet, p)))
		}
		if !Round(inv.TaxTotal, p).Equal(Round(sumTax, p)) {
			add("tax_total", inv.TaxTotal.String(),
				fmt.Sprintf("no coincide con la suma del IVA por línea (%s)", FormatAmount(sumTax, p)))
		}
		expected := Round(inv.LineExtensionTotal, p).Add(Round(inv.TaxTotal, p))
		if !Round(inv.TotalWithTax, p).Equal(expected) {
			add("total_with_tax", inv.TotalWithTax.String(),
				fmt.Sprintf("no coincide con total sin IVA + IVA (%s)", FormatAmount(expected, p)))
		}
	}

	if opts.RequireChain {
		if inv.ICV < 1 {
			add("icv", fmt.Sprint(inv.ICV), "el contador de factura debe ser >= 1")
		}
		if inv.PIH == "" {
			add("pih", "", "el hash de la factura anterior es obligatorio")
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrValidation}, errs...)...)
	}
	return nil
}

// ValidateAddress exige los seis componentes de la dirección.
func ValidateAddress(prefix string, a entity.Address) []error {
	var errs []error
	fields := []struct{ name, value string }{
		{"street_name", a.StreetName},
		{"building_number", a.BuildingNumber},
		{"district", a.District},
		{"city", a.City},
		{"postal_code", a.PostalCode},
		{"country_code", a.CountryCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, NewValidationError(prefix+".address."+f.name, "", "componente de dirección obligatorio"))
		}
	}
	if a.CountryCode != "" && len(a.CountryCode) != 2 {
		errs = append(errs, NewValidationError(prefix+".address.country_code", a.CountryCode, "código de país ISO 3166-1 alfa-2 inválido"))
	}
	return errs
}

func validateParty(prefix string, p entity.Party) []error {
	errs := ValidateAddress(prefix, p.Address)
	if p.SchemeID != "" && !pkgzatca.ValidPartySchemes[p.SchemeID] {
		errs = append(errs, NewValidationError(prefix+".scheme_id", p.SchemeID, "esquema de identificación no soportado"))
	}
	if p.SchemeID != "" && strings.TrimSpace(p.PartyID) == "" {
		errs = append(errs, NewValidationError(prefix+".party_id", "", "identificación requerida para el esquema indicado"))
	}
	return errs
}

func validateLine(i int, l entity.LineItem, precision int32) []error {
	var errs []error
	field := func(name string) string { return fmt.Sprintf("lines[%d].%s", i, name) }

	if strings.TrimSpace(l.Description) == "" {
		errs = append(errs, NewValidationError(field("description"), "", "la descripción es obligatoria"))
	}
	if !l.Quantity.IsPositive() {
		errs = append(errs, NewValidationError(field("quantity"), l.Quantity.String(), "la cantidad debe ser mayor que cero"))
	}
	if l.UnitPrice.IsNegative() {
		errs = append(errs, NewValidationError(field("unit_price"), l.UnitPrice.String(), "el precio unitario no puede ser negativo"))
	}
	if strings.TrimSpace(l.UnitCode) == "" {
		errs = append(errs, NewValidationError(field("unit_code"), "", "la unidad de medida es obligatoria"))
	}
	if !pkgzatca.ValidTaxCategories[l.TaxCategory] {
		errs = append(errs, NewValidationError(field("tax_category"), l.TaxCategory, "categoría de impuesto no soportada"))
	}
	if l.TaxPercent.IsNegative() || l.TaxPercent.GreaterThan(hundred) {
		errs = append(errs, NewValidationError(field("tax_percent"), l.TaxPercent.String(), "la tasa debe estar entre 0 y 100"))
	}
	if l.TaxCategory != pkgzatca.TaxCategoryStandard && !l.TaxPercent.IsZero() {
		errs = append(errs, NewValidationError(field("tax_percent"), l.TaxPercent.String(), "solo la categoría S admite tasa distinta de cero"))
	}

	ext, tax := LineAmounts(l, precision)
	if !Round(l.LineExtensionAmount, precision).Equal(ext) {
		errs = append(errs, NewValidationError(field("line_extension_amount"), l.LineExtensionAmount.String(),
			fmt.Sprintf("debe ser precio * cantidad (%s)", FormatAmount(ext, precision))))
	}
	if !Round(l.TaxAmount, precision).Equal(tax) {
		errs = append(errs, NewValidationError(field("tax_amount"), l.TaxAmount.String(),
			fmt.Sprintf("debe ser extensión * tasa (%s)", FormatAmount(tax, precision))))
	}
	return errs
}
