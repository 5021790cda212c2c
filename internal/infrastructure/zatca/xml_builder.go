// Package zatca renderiza la factura en UBL 2.1 con las extensiones ZATCA: forma canónica
// (entrada del hash y la firma), documento final ensamblado y verificación de documentos.
package zatca

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// Namespaces UBL 2.1 y de la extensión de firma.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	NsSig     = "urn:oasis:names:specification:ubl:schema:xsd:CommonSignatureComponents-2"
	NsSac     = "urn:oasis:names:specification:ubl:schema:xsd:SignatureAggregateComponents-2"
	NsSbc     = "urn:oasis:names:specification:ubl:schema:xsd:SignatureBasicComponents-2"
)

// Identificadores fijos de referencias y firma.
const (
	RefICV = "ICV"
	RefPIH = "PIH"
	RefQR  = "QR"

	SignatureMethodXAdES  = "urn:oasis:names:specification:ubl:dsig:enveloped:xades"
	SignatureInvoiceID    = "urn:oasis:names:specification:ubl:signature:Invoice"
	SignatureInformation1 = "urn:oasis:names:specification:ubl:signature:1"
	mimeTextPlain         = "text/plain"
)

// Nombres de bloque en el orden posicional del esquema.
const (
	BlockExtensions          = "ubl_extensions"
	BlockHeader              = "header"
	BlockICVReference        = "icv_reference"
	BlockPIHReference        = "pih_reference"
	BlockQRReference         = "qr_reference"
	BlockSignatureReference  = "signature_reference"
	BlockSupplierParty       = "supplier_party"
	BlockCustomerParty       = "customer_party"
	BlockDelivery            = "delivery"
	BlockPaymentMeans        = "payment_means"
	BlockTaxTotal            = "tax_total"
	BlockTaxTotalTaxCurrency = "tax_total_tax_currency"
	BlockLegalMonetaryTotal  = "legal_monetary_total"
	BlockInvoiceLines        = "invoice_lines"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// renderContext datos compartidos por los constructores de bloque.
type renderContext struct {
	inv       *entity.Invoice
	profile   pkgzatca.Profile
	precision int32
}

// block constructor de un segmento del documento. Los bloques no canónicos dependen de la
// firma o del QR y quedan fuera de los bytes que se hashean.
type block struct {
	name      string
	canonical bool
	write     func(w *xmlWriter, c *renderContext)
}

// blocks es el contrato de orden: se invocan en secuencia, nunca se construye un árbol libre.
var blocks = []block{
	{BlockExtensions, false, writeExtensions},
	{BlockHeader, true, writeHeader},
	{BlockICVReference, true, writeICVReference},
	{BlockPIHReference, true, writePIHReference},
	{BlockQRReference, false, writeQRReference},
	{BlockSignatureReference, false, writeSignatureReference},
	{BlockSupplierParty, true, writeSupplierParty},
	{BlockCustomerParty, true, writeCustomerParty},
	{BlockDelivery, true, writeDelivery},
	{BlockPaymentMeans, true, writePaymentMeans},
	{BlockTaxTotal, true, writeTaxTotal},
	{BlockTaxTotalTaxCurrency, true, writeTaxTotalTaxCurrency},
	{BlockLegalMonetaryTotal, true, writeLegalMonetaryTotal},
	{BlockInvoiceLines, true, writeInvoiceLines},
}

// BlockOrder orden de bloques del documento ensamblado.
func BlockOrder() []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.name)
	}
	return out
}

// CanonicalBlockOrder orden de bloques de la forma canónica.
func CanonicalBlockOrder() []string {
	var out []string
	for _, b := range blocks {
		if b.canonical {
			out = append(out, b.name)
		}
	}
	return out
}

// render escribe la raíz Invoice y los bloques seleccionados, sin indentación:
// el verificador reconstruye la forma canónica quitando nodos, y los espacios
// entre bloques romperían esa igualdad.
func render(c *renderContext, canonicalOnly, declaration bool) ([]byte, error) {
	var buf bytes.Buffer
	if declaration {
		buf.WriteString(xml.Header[:len(xml.Header)-1])
	}
	w := newXMLWriter(&buf, c.precision)
	w.start("Invoice",
		attr("xmlns", NsInvoice),
		attr("xmlns:cac", NsCac),
		attr("xmlns:cbc", NsCbc),
		attr("xmlns:ext", NsExt),
	)
	for _, b := range blocks {
		if canonicalOnly && !b.canonical {
			continue
		}
		b.write(w, c)
	}
	w.end("Invoice")
	if err := w.flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Escritor con error persistente
// =============================================================================

type xmlWriter struct {
	enc       *xml.Encoder
	precision int32
	err       error
}

func newXMLWriter(buf *bytes.Buffer, precision int32) *xmlWriter {
	return &xmlWriter{enc: xml.NewEncoder(buf), precision: precision}
}

// attr reemplaza tab y saltos de línea por espacios, igual que la normalización de atributos de un parser.
func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: attrReplacer.Replace(value)}
}

var (
	attrReplacer    = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ")
	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// textValue normaliza saltos de línea a \n (como hace cualquier parser XML al leer) y el texto a NFC.
func textValue(s string) string {
	return norm.NFC.String(newlineReplacer.Replace(s))
}

func (w *xmlWriter) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}

func (w *xmlWriter) start(name string, attrs ...xml.Attr) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (w *xmlWriter) end(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

// leaf escribe un elemento de texto normalizado con textValue.
func (w *xmlWriter) leaf(name, value string, attrs ...xml.Attr) {
	w.start(name, attrs...)
	w.token(xml.CharData(textValue(value)))
	w.end(name)
}

func (w *xmlWriter) cbc(local, value string, attrs ...xml.Attr) {
	w.leaf("cbc:"+local, value, attrs...)
}

func (w *xmlWriter) amount(local string, d decimal.Decimal, currency string) {
	w.cbc(local, zatca.FormatAmount(d, w.precision), attr("currencyID", currency))
}

func (w *xmlWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.enc.Flush()
}

// =============================================================================
// Bloques
// =============================================================================

// writeExtensions deja sac:SignatureInformation lista para recibir ds:Signature.
func writeExtensions(w *xmlWriter, _ *renderContext) {
	w.start("ext:UBLExtensions")
	w.start("ext:UBLExtension")
	w.leaf("ext:ExtensionURI", SignatureMethodXAdES)
	w.start("ext:ExtensionContent")
	w.start("sig:UBLDocumentSignatures",
		attr("xmlns:sig", NsSig),
		attr("xmlns:sac", NsSac),
		attr("xmlns:sbc", NsSbc),
	)
	w.start("sac:SignatureInformation")
	w.cbc("ID", SignatureInformation1)
	w.leaf("sbc:ReferencedSignatureID", SignatureInvoiceID)
	w.end("sac:SignatureInformation")
	w.end("sig:UBLDocumentSignatures")
	w.end("ext:ExtensionContent")
	w.end("ext:UBLExtension")
	w.end("ext:UBLExtensions")
}

func writeHeader(w *xmlWriter, c *renderContext) {
	inv := c.inv
	issued := inv.IssuedAt.UTC()
	w.cbc("UBLVersionID", pkgzatca.UBLVersion)
	w.cbc("CustomizationID", pkgzatca.CustomizationID)
	w.cbc("ProfileID", pkgzatca.ProfileIDReporting)
	w.cbc("ID", inv.ID)
	w.cbc("UUID", inv.UUID)
	w.cbc("IssueDate", issued.Format(dateLayout))
	w.cbc("IssueTime", issued.Format(timeLayout))
	w.cbc("InvoiceTypeCode", inv.TypeCode, attr("name", c.profile.TransactionFlags()))
	w.cbc("DocumentCurrencyCode", inv.Currency)
	w.cbc("TaxCurrencyCode", inv.TaxCurrency)
}

func writeICVReference(w *xmlWriter, c *renderContext) {
	w.start("cac:AdditionalDocumentReference")
	w.cbc("ID", RefICV)
	w.cbc("UUID", strconv.FormatInt(c.inv.ICV, 10))
	w.end("cac:AdditionalDocumentReference")
}

func writeEmbeddedReference(w *xmlWriter, id, value string) {
	w.start("cac:AdditionalDocumentReference")
	w.cbc("ID", id)
	w.start("cac:Attachment")
	w.cbc("EmbeddedDocumentBinaryObject", value, attr("mimeCode", mimeTextPlain))
	w.end("cac:Attachment")
	w.end("cac:AdditionalDocumentReference")
}

func writePIHReference(w *xmlWriter, c *renderContext) {
	writeEmbeddedReference(w, RefPIH, c.inv.PIH)
}

func writeQRReference(w *xmlWriter, c *renderContext) {
	writeEmbeddedReference(w, RefQR, c.inv.QRPayload)
}

func writeSignatureReference(w *xmlWriter, _ *renderContext) {
	w.start("cac:Signature")
	w.cbc("ID", SignatureInvoiceID)
	w.cbc("SignatureMethod", SignatureMethodXAdES)
	w.end("cac:Signature")
}

func writeSupplierParty(w *xmlWriter, c *renderContext) {
	w.start("cac:AccountingSupplierParty")
	writeParty(w, c.inv.Seller)
	w.end("cac:AccountingSupplierParty")
}

func writeCustomerParty(w *xmlWriter, c *renderContext) {
	if c.inv.Buyer == nil {
		return
	}
	w.start("cac:AccountingCustomerParty")
	writeParty(w, *c.inv.Buyer)
	w.end("cac:AccountingCustomerParty")
}

func writeParty(w *xmlWriter, p entity.Party) {
	w.start("cac:Party")
	if p.SchemeID != "" {
		w.start("cac:PartyIdentification")
		w.cbc("ID", p.PartyID, attr("schemeID", p.SchemeID))
		w.end("cac:PartyIdentification")
	}
	a := p.Address
	w.start("cac:PostalAddress")
	w.cbc("StreetName", a.StreetName)
	w.cbc("BuildingNumber", a.BuildingNumber)
	w.cbc("CitySubdivisionName", a.District)
	w.cbc("CityName", a.City)
	w.cbc("PostalZone", a.PostalCode)
	w.cbc("CountrySubentity", a.District)
	w.start("cac:Country")
	w.cbc("IdentificationCode", a.CountryCode)
	w.end("cac:Country")
	w.end("cac:PostalAddress")
	if p.VATNumber != "" {
		w.start("cac:PartyTaxScheme")
		w.cbc("CompanyID", p.VATNumber)
		w.start("cac:TaxScheme")
		w.cbc("ID", pkgzatca.TaxSchemeVAT)
		w.end("cac:TaxScheme")
		w.end("cac:PartyTaxScheme")
	}
	w.start("cac:PartyLegalEntity")
	w.cbc("RegistrationName", p.Name)
	w.end("cac:PartyLegalEntity")
	w.end("cac:Party")
}

func writeDelivery(w *xmlWriter, c *renderContext) {
	d := c.inv.IssuedAt
	if c.inv.DeliveryDate != nil {
		d = *c.inv.DeliveryDate
	}
	w.start("cac:Delivery")
	w.cbc("ActualDeliveryDate", d.UTC().Format(dateLayout))
	w.end("cac:Delivery")
}

func writePaymentMeans(w *xmlWriter, c *renderContext) {
	code := c.inv.PaymentMeansCode
	if code == "" {
		code = pkgzatca.PaymentMeansCash
	}
	w.start("cac:PaymentMeans")
	w.cbc("PaymentMeansCode", code)
	w.end("cac:PaymentMeans")
}

func writeTaxScheme(w *xmlWriter) {
	w.start("cac:TaxScheme")
	w.cbc("ID", pkgzatca.TaxSchemeVAT, attr("schemeAgencyID", "6"), attr("schemeID", "UN/ECE 5153"))
	w.end("cac:TaxScheme")
}

func writeTaxTotal(w *xmlWriter, c *renderContext) {
	inv := c.inv
	w.start("cac:TaxTotal")
	w.amount("TaxAmount", inv.TaxTotal, inv.Currency)
	for _, st := range zatca.TaxSubtotals(inv.Lines) {
		w.start("cac:TaxSubtotal")
		w.amount("TaxableAmount", st.TaxableAmount, inv.Currency)
		w.amount("TaxAmount", st.TaxAmount, inv.Currency)
		w.start("cac:TaxCategory")
		w.cbc("ID", st.Category, attr("schemeAgencyID", "6"), attr("schemeID", "UN/ECE 5305"))
		w.cbc("Percent", zatca.FormatAmount(st.Percent, 2))
		writeTaxScheme(w)
		w.end("cac:TaxCategory")
		w.end("cac:TaxSubtotal")
	}
	w.end("cac:TaxTotal")
}

// writeTaxTotalTaxCurrency segundo TaxTotal, sin desglose, en la moneda de impuesto.
func writeTaxTotalTaxCurrency(w *xmlWriter, c *renderContext) {
	w.start("cac:TaxTotal")
	w.amount("TaxAmount", c.inv.TaxTotal, c.inv.TaxCurrency)
	w.end("cac:TaxTotal")
}

func writeLegalMonetaryTotal(w *xmlWriter, c *renderContext) {
	inv := c.inv
	cur := inv.Currency
	w.start("cac:LegalMonetaryTotal")
	w.amount("LineExtensionAmount", inv.LineExtensionTotal, cur)
	w.amount("TaxExclusiveAmount", inv.LineExtensionTotal, cur)
	w.amount("TaxInclusiveAmount", inv.TotalWithTax, cur)
	w.amount("AllowanceTotalAmount", decimal.Zero, cur)
	w.amount("PrepaidAmount", decimal.Zero, cur)
	w.amount("PayableAmount", inv.TotalWithTax, cur)
	w.end("cac:LegalMonetaryTotal")
}

func writeInvoiceLines(w *xmlWriter, c *renderContext) {
	cur := c.inv.Currency
	for i, l := range c.inv.Lines {
		id := l.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		w.start("cac:InvoiceLine")
		w.cbc("ID", id)
		w.cbc("InvoicedQuantity", l.Quantity.String(), attr("unitCode", l.UnitCode))
		w.amount("LineExtensionAmount", l.LineExtensionAmount, cur)

		w.start("cac:TaxTotal")
		w.amount("TaxAmount", l.TaxAmount, cur)
		w.amount("RoundingAmount", l.LineExtensionAmount.Add(l.TaxAmount), cur)
		w.end("cac:TaxTotal")

		w.start("cac:Item")
		w.cbc("Name", l.Description)
		w.start("cac:ClassifiedTaxCategory")
		w.cbc("ID", l.TaxCategory)
		w.cbc("Percent", zatca.FormatAmount(l.TaxPercent, 2))
		w.start("cac:TaxScheme")
		w.cbc("ID", pkgzatca.TaxSchemeVAT)
		w.end("cac:TaxScheme")
		w.end("cac:ClassifiedTaxCategory")
		w.end("cac:Item")

		w.start("cac:Price")
		w.cbc("PriceAmount", zatca.FormatPrice(l.UnitPrice, w.precision), attr("currencyID", cur))
		w.start("cac:AllowanceCharge")
		w.cbc("ChargeIndicator", "false")
		w.cbc("AllowanceChargeReason", "discount")
		w.amount("Amount", decimal.Zero, cur)
		w.end("cac:AllowanceCharge")
		w.end("cac:Price")
		w.end("cac:InvoiceLine")
	}
}
