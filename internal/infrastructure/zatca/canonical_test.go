package zatca_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

func TestBlockOrder(t *testing.T) {
	assert.Equal(t, []string{
		infrazatca.BlockExtensions,
		infrazatca.BlockHeader,
		infrazatca.BlockICVReference,
		infrazatca.BlockPIHReference,
		infrazatca.BlockQRReference,
		infrazatca.BlockSignatureReference,
		infrazatca.BlockSupplierParty,
		infrazatca.BlockCustomerParty,
		infrazatca.BlockDelivery,
		infrazatca.BlockPaymentMeans,
		infrazatca.BlockTaxTotal,
		infrazatca.BlockTaxTotalTaxCurrency,
		infrazatca.BlockLegalMonetaryTotal,
		infrazatca.BlockInvoiceLines,
	}, infrazatca.BlockOrder())

	canonical := infrazatca.CanonicalBlockOrder()
	assert.NotContains(t, canonical, infrazatca.BlockExtensions)
	assert.NotContains(t, canonical, infrazatca.BlockQRReference)
	assert.NotContains(t, canonical, infrazatca.BlockSignatureReference)
	assert.Equal(t, infrazatca.BlockHeader, canonical[0])
	assert.Equal(t, infrazatca.BlockInvoiceLines, canonical[len(canonical)-1])
}

func TestSerialize_Deterministic(t *testing.T) {
	s := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2)

	a := buildChainedInvoice()

	// Mismo contenido lógico construido en otro orden y con otra escala decimal.
	b := &entity.Invoice{PIH: zatca.PlaceholderPIH, ICV: 1}
	b.Lines = []entity.LineItem{{
		TaxPercent:  decimal.RequireFromString("15.0"),
		TaxCategory: "S",
		UnitCode:    "PCE",
		Quantity:    decimal.RequireFromString("2.000"),
		UnitPrice:   decimal.NewFromInt(500),
		Description: "Product A",
		ID:          "1",
	}}
	b.Seller = a.Seller
	b.TaxCurrency, b.Currency = "SAR", "SAR"
	b.TypeCode = "388"
	b.IssuedAt = a.IssuedAt
	b.UUID, b.ID = a.UUID, a.ID
	zatca.ComputeTotals(b, 2)

	first, err := s.Serialize(a)
	require.NoError(t, err)
	second, err := s.Serialize(b)
	require.NoError(t, err)
	again, err := s.Serialize(a)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, again)
}

func TestSerialize_ExcludesSignatureAndQR(t *testing.T) {
	inv := buildChainedInvoice()
	inv.QRPayload = "AQtBQkM="
	inv.Signature = "c2ln"

	out, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2).Serialize(inv)
	require.NoError(t, err)
	s := string(out)

	assert.False(t, strings.HasPrefix(s, "<?xml"))
	assert.NotContains(t, s, "UBLExtensions")
	assert.NotContains(t, s, "cac:Signature")
	assert.NotContains(t, s, inv.QRPayload)
	assert.Contains(t, s, zatca.PlaceholderPIH)
	assert.Contains(t, s, `>2024-01-15<`)
	assert.Contains(t, s, `>10:30:00<`)
	assert.Contains(t, s, `name="0200000"`)
	assert.Contains(t, s, `>1150.00<`)
}

func TestSerialize_ChangesWithContent(t *testing.T) {
	s := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2)
	a := buildChainedInvoice()
	b := buildChainedInvoice()
	b.PIH = "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0="
	b.ICV = 2

	ca, err := s.Serialize(a)
	require.NoError(t, err)
	cb, err := s.Serialize(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca, cb)
}

func TestSerialize_MissingPostalCode(t *testing.T) {
	inv := buildChainedInvoice()
	inv.Seller.Address.PostalCode = ""

	_, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2).Serialize(inv)
	require.Error(t, err)
	assert.ErrorIs(t, err, zatca.ErrValidation)
	assert.Contains(t, err.Error(), "seller.address.postal_code")
}

func TestSerialize_RequiresChainFields(t *testing.T) {
	inv := buildChainedInvoice()
	inv.ICV = 0
	inv.PIH = ""

	_, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2).Serialize(inv)
	assert.ErrorIs(t, err, zatca.ErrValidation)
}

func TestSerialize_NegativeQuantity(t *testing.T) {
	inv := buildChainedInvoice()
	inv.Lines[0].Quantity = decimal.NewFromInt(-1)

	_, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileSimplified, 2).Serialize(inv)
	assert.ErrorIs(t, err, zatca.ErrValidation)
}

func TestSerialize_StandardRequiresBuyer(t *testing.T) {
	inv := buildChainedInvoice()

	_, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileStandard, 2).Serialize(inv)
	assert.ErrorIs(t, err, zatca.ErrValidation)

	inv.Buyer = &entity.Party{Name: "Buyer Co", VATNumber: "300000000000003", Address: testAddress()}
	out, err := infrazatca.NewCanonicalSerializer(pkgzatca.ProfileStandard, 2).Serialize(inv)
	require.NoError(t, err)
	assert.Contains(t, string(out), "AccountingCustomerParty")
	assert.Contains(t, string(out), `name="0100000"`)
}
