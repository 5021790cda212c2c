package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura en memoria: datos del emisor, comprador, líneas y totales.
// El pipeline la completa (ICV, PIH, hash, firma y QR) sobre una copia; una vez
// ensamblada en el documento final no se vuelve a modificar.
type Invoice struct {
	ID       string    // Número de factura (cbc:ID)
	UUID     string    // cbc:UUID
	IssuedAt time.Time // Fecha y hora de emisión
	TypeCode string    // 388, 381, 383, 386

	Currency    string // cbc:DocumentCurrencyCode
	TaxCurrency string // cbc:TaxCurrencyCode

	Seller Party
	Buyer  *Party // Opcional en facturas simplificadas

	DeliveryDate     *time.Time
	PaymentMeansCode string

	Lines []LineItem

	LineExtensionTotal decimal.Decimal // Total sin IVA
	TaxTotal           decimal.Decimal // IVA total
	TotalWithTax       decimal.Decimal // Total con IVA

	// Encadenamiento
	ICV int64  // Contador de la factura en la cadena del emisor
	PIH string // Hash (Base64) de la factura anterior

	// Artefactos del pipeline
	Hash      string // Base64(SHA-256(forma canónica))
	Signature string // Base64(firma DER)
	QRPayload string // Base64(TLV)
}

// LineItem línea de factura. LineExtensionAmount y TaxAmount son calculados.
type LineItem struct {
	ID          string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	UnitCode    string
	TaxCategory string          // S, Z, E, O
	TaxPercent  decimal.Decimal // Porcentaje, ej. 15

	LineExtensionAmount decimal.Decimal // UnitPrice * Quantity
	TaxAmount           decimal.Decimal // LineExtensionAmount * TaxPercent / 100
}

// Clone devuelve una copia profunda de la factura.
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	if i.Buyer != nil {
		b := *i.Buyer
		c.Buyer = &b
	}
	if i.DeliveryDate != nil {
		d := *i.DeliveryDate
		c.DeliveryDate = &d
	}
	c.Lines = append([]LineItem(nil), i.Lines...)
	return &c
}
