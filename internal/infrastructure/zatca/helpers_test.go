package zatca_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

const testSellerVAT = "310000000000003"

func testAddress() entity.Address {
	return entity.Address{
		StreetName:     "Main Street",
		BuildingNumber: "1234",
		District:       "Al Olaya District",
		City:           "Riyadh",
		PostalCode:     "12345",
		CountryCode:    "SA",
	}
}

// buildChainedInvoice factura simplificada con ICV 1 y PIH placeholder.
func buildChainedInvoice() *entity.Invoice {
	inv := &entity.Invoice{
		ID:          "INV-0001",
		UUID:        "3cf5ee18-ee25-44ea-a444-2c37ba7f28be",
		IssuedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		TypeCode:    pkgzatca.InvoiceTypeTaxInvoice,
		Currency:    pkgzatca.CurrencySAR,
		TaxCurrency: pkgzatca.CurrencySAR,
		Seller: entity.Party{
			Name:      "ABC Company",
			VATNumber: testSellerVAT,
			SchemeID:  pkgzatca.SchemeCommercialRegistration,
			PartyID:   "1234567890",
			Address:   testAddress(),
		},
		Lines: []entity.LineItem{{
			ID:          "1",
			Description: "Product A",
			UnitPrice:   decimal.RequireFromString("500.00"),
			Quantity:    decimal.NewFromInt(2),
			UnitCode:    pkgzatca.UnitPiece,
			TaxCategory: pkgzatca.TaxCategoryStandard,
			TaxPercent:  decimal.NewFromInt(15),
		}},
		ICV: zatca.FirstCounter,
		PIH: zatca.PlaceholderPIH,
	}
	zatca.ComputeTotals(inv, zatca.DefaultPrecision)
	return inv
}

// issue ejecuta los pasos del pipeline sobre inv y devuelve el documento ensamblado.
func issue(t *testing.T, inv *entity.Invoice, svc *signer.Service) []byte {
	t.Helper()
	canonical, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2).Serialize(inv)
	require.NoError(t, err)
	h, err := zatca.ComputeInvoiceHash(canonical)
	require.NoError(t, err)
	inv.Hash = h.Base64

	inv.Signature, err = svc.Sign(canonical)
	require.NoError(t, err)
	pub, err := svc.PublicKey()
	require.NoError(t, err)

	enc, err := zatca.NewQREncoder(zatca.SimplifiedTags, 2)
	require.NoError(t, err)
	pubSig, err := svc.PublicKeySignature()
	require.NoError(t, err)
	inv.QRPayload, err = enc.Encode(zatca.QRFields{
		SellerName:         inv.Seller.Name,
		VATNumber:          inv.Seller.VATNumber,
		Timestamp:          inv.IssuedAt,
		TotalWithVAT:       inv.TotalWithTax,
		VATTotal:           inv.TaxTotal,
		InvoiceHash:        inv.Hash,
		Signature:          inv.Signature,
		PublicKey:          pub,
		PublicKeySignature: pubSig,
	})
	require.NoError(t, err)

	sigXML, err := svc.SignatureXML(inv.Hash, inv.Signature)
	require.NoError(t, err)
	doc, err := infrazatca.NewAssembler(pkgzatca.ProfileSimplified, 2).Assemble(context.Background(), inv, sigXML)
	require.NoError(t, err)
	return doc
}

func newService(t *testing.T, withCert bool) (*signer.Service, *signer.KeyPair) {
	t.Helper()
	kp, err := signer.GenerateKeyPair()
	require.NoError(t, err)
	if withCert {
		require.NoError(t, signer.SelfSign(kp, "", testSellerVAT, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	}
	svc, err := signer.NewService(kp, signer.WithClock(func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return svc, kp
}
