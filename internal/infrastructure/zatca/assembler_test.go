package zatca_test

import (
	"context"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

func parseDoc(t *testing.T, data []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

func TestAssemble_EndToEnd(t *testing.T) {
	svc, _ := newService(t, false)
	inv := buildChainedInvoice()
	out := issue(t, inv, svc)

	root := parseDoc(t, out)
	assert.Equal(t, "Invoice", root.Tag)

	lmt := root.SelectElement("cac:LegalMonetaryTotal")
	require.NotNil(t, lmt)
	assert.Equal(t, "1150.00", lmt.SelectElement("cbc:PayableAmount").Text())
	assert.Equal(t, "1150.00", lmt.SelectElement("cbc:TaxInclusiveAmount").Text())
	assert.Equal(t, "1000.00", lmt.SelectElement("cbc:LineExtensionAmount").Text())
	assert.Equal(t, "SAR", lmt.SelectElement("cbc:PayableAmount").SelectAttrValue("currencyID", ""))

	pih := root.FindElement("./cac:AdditionalDocumentReference[cbc:ID='PIH']/cac:Attachment/cbc:EmbeddedDocumentBinaryObject")
	require.NotNil(t, pih)
	assert.Equal(t, zatca.PlaceholderPIH, pih.Text())

	icv := root.FindElement("./cac:AdditionalDocumentReference[cbc:ID='ICV']/cbc:UUID")
	require.NotNil(t, icv)
	assert.Equal(t, "1", icv.Text())

	qr := root.FindElement("./cac:AdditionalDocumentReference[cbc:ID='QR']/cac:Attachment/cbc:EmbeddedDocumentBinaryObject")
	require.NotNil(t, qr)
	assert.Equal(t, inv.QRPayload, qr.Text())

	sig := root.FindElement("./ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent/sig:UBLDocumentSignatures/sac:SignatureInformation/ds:Signature")
	require.NotNil(t, sig)
	assert.Equal(t, inv.Signature, sig.FindElement("./ds:SignatureValue").Text())
	assert.Equal(t, inv.Hash, sig.FindElement("./ds:SignedInfo/ds:Reference/ds:DigestValue").Text())

	taxTotals := root.SelectElements("cac:TaxTotal")
	require.Len(t, taxTotals, 2)
	assert.Equal(t, "150.00", taxTotals[0].SelectElement("cbc:TaxAmount").Text())
	assert.Len(t, taxTotals[0].SelectElements("cac:TaxSubtotal"), 1)
	assert.Empty(t, taxTotals[1].SelectElements("cac:TaxSubtotal"))

	line := root.SelectElement("cac:InvoiceLine")
	require.NotNil(t, line)
	assert.Equal(t, "2", line.SelectElement("cbc:InvoicedQuantity").Text())
	assert.Equal(t, "PCE", line.SelectElement("cbc:InvoicedQuantity").SelectAttrValue("unitCode", ""))
	assert.Equal(t, "1150.00", line.FindElement("./cac:TaxTotal/cbc:RoundingAmount").Text())
	assert.Equal(t, "500.00", line.FindElement("./cac:Price/cbc:PriceAmount").Text())
}

func TestAssemble_ElementSequence(t *testing.T) {
	svc, _ := newService(t, false)
	inv := buildChainedInvoice()
	inv.Buyer = &inv.Seller
	out := issue(t, inv, svc)

	var tags []string
	for _, el := range parseDoc(t, out).ChildElements() {
		tags = append(tags, el.Tag)
	}
	assert.Equal(t, []string{
		"UBLExtensions",
		"UBLVersionID", "CustomizationID", "ProfileID", "ID", "UUID", "IssueDate", "IssueTime", "InvoiceTypeCode",
		"DocumentCurrencyCode", "TaxCurrencyCode",
		"AdditionalDocumentReference", "AdditionalDocumentReference", "AdditionalDocumentReference",
		"Signature",
		"AccountingSupplierParty", "AccountingCustomerParty",
		"Delivery", "PaymentMeans",
		"TaxTotal", "TaxTotal",
		"LegalMonetaryTotal",
		"InvoiceLine",
	}, tags)
}

func TestAssemble_SellerAddressComplete(t *testing.T) {
	svc, _ := newService(t, false)
	out := issue(t, buildChainedInvoice(), svc)

	addr := parseDoc(t, out).FindElement("./cac:AccountingSupplierParty/cac:Party/cac:PostalAddress")
	require.NotNil(t, addr)
	for tag, want := range map[string]string{
		"cbc:StreetName":          "Main Street",
		"cbc:BuildingNumber":      "1234",
		"cbc:CitySubdivisionName": "Al Olaya District",
		"cbc:CityName":            "Riyadh",
		"cbc:PostalZone":          "12345",
		"cbc:CountrySubentity":    "Al Olaya District",
	} {
		el := addr.SelectElement(tag)
		require.NotNil(t, el, tag)
		assert.Equal(t, want, el.Text(), tag)
	}
	assert.Equal(t, "SA", addr.FindElement("./cac:Country/cbc:IdentificationCode").Text())
}

func TestAssemble_HeaderVersion(t *testing.T) {
	svc, _ := newService(t, false)
	root := parseDoc(t, issue(t, buildChainedInvoice(), svc))

	assert.Equal(t, "2.1", root.SelectElement("cbc:UBLVersionID").Text())
	assert.Equal(t, pkgzatca.CustomizationID, root.SelectElement("cbc:CustomizationID").Text())
	assert.Equal(t, pkgzatca.ProfileIDReporting, root.SelectElement("cbc:ProfileID").Text())
}

func TestAssemble_RequiresArtifacts(t *testing.T) {
	a := infrazatca.NewAssembler(pkgzatca.ProfileSimplified, 2)

	inv := buildChainedInvoice()
	_, err := a.Assemble(context.Background(), inv, "<ds:Signature xmlns:ds=\"x\"/>")
	require.Error(t, err)
	assert.ErrorIs(t, err, zatca.ErrValidation)

	inv.Hash = "aGFzaA=="
	inv.Signature = "c2ln"
	inv.QRPayload = "AQA="
	_, err = a.Assemble(context.Background(), inv, "")
	assert.ErrorIs(t, err, zatca.ErrValidation)
}

func TestAssemble_MissingBuyerAddressFails(t *testing.T) {
	svc, _ := newService(t, false)
	inv := buildChainedInvoice()
	issue(t, inv, svc)

	buyer := inv.Seller
	buyer.Address.District = ""
	inv.Buyer = &buyer
	sigXML, err := svc.SignatureXML(inv.Hash, inv.Signature)
	require.NoError(t, err)

	_, err = infrazatca.NewAssembler(pkgzatca.ProfileSimplified, 2).Assemble(context.Background(), inv, sigXML)
	require.Error(t, err)
	assert.ErrorIs(t, err, zatca.ErrValidation)
	assert.Contains(t, err.Error(), "buyer.address.district")
}

func TestAssemble_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := infrazatca.NewAssembler(pkgzatca.ProfileSimplified, 2).Assemble(ctx, buildChainedInvoice(), "")
	assert.ErrorIs(t, err, context.Canceled)
}
