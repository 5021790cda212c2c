package billing

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// InvoiceFromRequest arma la factura en memoria. Las líneas se calculan siempre; los totales
// enviados se respetan para que la validación detecte discrepancias con las líneas.
func InvoiceFromRequest(req dto.IssueInvoiceRequest, cfg PipelineConfig) *entity.Invoice {
	cfg = cfg.withDefaults()
	inv := &entity.Invoice{
		ID:               req.Number,
		UUID:             req.UUID,
		TypeCode:         req.TypeCode,
		Currency:         req.Currency,
		TaxCurrency:      cfg.TaxCurrency,
		PaymentMeansCode: req.PaymentMeansCode,
		Seller:           partyFromRequest(req.Seller),
	}
	if inv.Currency == "" {
		inv.Currency = cfg.Currency
	}
	if req.IssuedAt != nil {
		inv.IssuedAt = *req.IssuedAt
	}
	if req.DeliveryDate != nil {
		d := *req.DeliveryDate
		inv.DeliveryDate = &d
	}
	if req.Buyer != nil {
		b := partyFromRequest(*req.Buyer)
		inv.Buyer = &b
	}
	for i, l := range req.Lines {
		line := entity.LineItem{
			ID:          l.ID,
			Description: l.Description,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			UnitCode:    l.UnitCode,
			TaxCategory: l.TaxCategory,
		}
		if line.ID == "" {
			line.ID = strconv.Itoa(i + 1)
		}
		if line.UnitCode == "" {
			line.UnitCode = pkgzatca.UnitPiece
		}
		if line.TaxCategory == "" {
			line.TaxCategory = pkgzatca.TaxCategoryStandard
		}
		switch {
		case l.TaxPercent != nil:
			line.TaxPercent = *l.TaxPercent
		case line.TaxCategory == pkgzatca.TaxCategoryStandard:
			line.TaxPercent = decimal.NewFromInt(pkgzatca.DefaultTaxPercent)
		}
		inv.Lines = append(inv.Lines, line)
	}
	zatca.ComputeTotals(inv, cfg.Precision)
	if req.TotalWithoutVAT != nil {
		inv.LineExtensionTotal = *req.TotalWithoutVAT
	}
	if req.VATAmount != nil {
		inv.TaxTotal = *req.VATAmount
	}
	if req.TotalWithVAT != nil {
		inv.TotalWithTax = *req.TotalWithVAT
	}
	return inv
}

func partyFromRequest(p dto.PartyRequest) entity.Party {
	return entity.Party{
		Name:      p.Name,
		VATNumber: p.VATNumber,
		SchemeID:  p.SchemeID,
		PartyID:   p.PartyID,
		Address: entity.Address{
			StreetName:     p.Address.StreetName,
			BuildingNumber: p.Address.BuildingNumber,
			District:       p.Address.District,
			City:           p.Address.City,
			PostalCode:     p.Address.PostalCode,
			CountryCode:    p.Address.CountryCode,
		},
	}
}

// NewIssuedInvoice registro persistible de una emisión.
func NewIssuedInvoice(res *Result, companyID string, profile pkgzatca.Profile, now time.Time) *entity.IssuedInvoice {
	inv := res.Invoice
	out := &entity.IssuedInvoice{
		CompanyID:  companyID,
		SellerVAT:  inv.Seller.VATNumber,
		SellerName: inv.Seller.Name,
		Number:     inv.ID,
		UUID:       inv.UUID,
		Profile:    string(profile),
		TypeCode:   inv.TypeCode,
		Currency:   inv.Currency,
		IssuedAt:   inv.IssuedAt,
		ICV:        inv.ICV,
		PIH:        inv.PIH,
		Hash:       inv.Hash,
		Signature:  inv.Signature,
		QRPayload:  inv.QRPayload,
		XML:        res.Document,
		NetTotal:   inv.LineExtensionTotal,
		TaxTotal:   inv.TaxTotal,
		GrandTotal: inv.TotalWithTax,
		Lines:      append([]entity.LineItem(nil), inv.Lines...),
		CreatedAt:  now,
	}
	if inv.Buyer != nil {
		out.BuyerName = inv.Buyer.Name
		out.BuyerVAT = inv.Buyer.VATNumber
	}
	return out
}

// ToInvoiceResponse mapea la factura emitida a su DTO.
func ToInvoiceResponse(inv *entity.IssuedInvoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		UUID:       inv.UUID,
		Profile:    inv.Profile,
		TypeCode:   inv.TypeCode,
		Currency:   inv.Currency,
		IssuedAt:   inv.IssuedAt.UTC().Format(time.RFC3339),
		SellerVAT:  inv.SellerVAT,
		SellerName: inv.SellerName,
		BuyerName:  inv.BuyerName,
		BuyerVAT:   inv.BuyerVAT,
		ICV:        inv.ICV,
		PIH:        inv.PIH,
		Hash:       inv.Hash,
		QRPayload:  inv.QRPayload,
		NetTotal:   inv.NetTotal,
		TaxTotal:   inv.TaxTotal,
		GrandTotal: inv.GrandTotal,
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:                  l.ID,
			Description:         l.Description,
			UnitPrice:           l.UnitPrice,
			Quantity:            l.Quantity,
			UnitCode:            l.UnitCode,
			TaxCategory:         l.TaxCategory,
			TaxPercent:          l.TaxPercent,
			LineExtensionAmount: l.LineExtensionAmount,
			TaxAmount:           l.TaxAmount,
		})
	}
	return resp
}

// DecodeQRFields decodifica el payload para mostrarlo: texto para los tags 1-7, Base64 para 8 y 9.
func DecodeQRFields(payload string) (*dto.QRResponse, error) {
	fields, err := zatca.DecodeQR(payload)
	if err != nil {
		return nil, err
	}
	resp := &dto.QRResponse{Payload: payload}
	for _, f := range fields {
		value := string(f.Value)
		if f.Tag == zatca.TagPublicKey || f.Tag == zatca.TagPublicKeySignature {
			value = base64.StdEncoding.EncodeToString(f.Value)
		}
		resp.Fields = append(resp.Fields, dto.QRFieldResponse{Tag: int(f.Tag), Name: f.Tag.String(), Value: value})
	}
	return resp, nil
}
