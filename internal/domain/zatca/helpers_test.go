package zatca_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
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

// buildTestInvoice factura simplificada válida: una línea de 2 x 500.00 al 15 %.
func buildTestInvoice() *entity.Invoice {
	inv := &entity.Invoice{
		ID:          "INV-0001",
		UUID:        "3cf5ee18-ee25-44ea-a444-2c37ba7f28be",
		IssuedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		TypeCode:    "388",
		Currency:    "SAR",
		TaxCurrency: "SAR",
		Seller: entity.Party{
			Name:      "ABC Company",
			VATNumber: testSellerVAT,
			SchemeID:  "CRN",
			PartyID:   "1234567890",
			Address:   testAddress(),
		},
		PaymentMeansCode: "10",
		Lines: []entity.LineItem{{
			ID:          "1",
			Description: "Product A",
			UnitPrice:   decimal.RequireFromString("500.00"),
			Quantity:    decimal.NewFromInt(2),
			UnitCode:    "PCE",
			TaxCategory: "S",
			TaxPercent:  decimal.NewFromInt(15),
		}},
	}
	zatca.ComputeTotals(inv, zatca.DefaultPrecision)
	return inv
}
