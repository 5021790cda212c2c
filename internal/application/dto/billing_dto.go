package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddressRequest dirección nacional: los seis componentes son obligatorios.
type AddressRequest struct {
	StreetName     string `json:"street_name"`
	BuildingNumber string `json:"building_number"`
	District       string `json:"district"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	CountryCode    string `json:"country_code"`
}

// PartyRequest emisor o comprador.
type PartyRequest struct {
	Name      string         `json:"name"`
	VATNumber string         `json:"vat_number,omitempty"`
	SchemeID  string         `json:"scheme_id,omitempty"` // CRN, NAT, TIN, ...
	PartyID   string         `json:"party_id,omitempty"`
	Address   AddressRequest `json:"address"`
}

// InvoiceLineRequest línea de factura. tax_category por defecto S y tax_percent 15.
type InvoiceLineRequest struct {
	ID          string           `json:"id,omitempty"`
	Description string           `json:"description"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCode    string           `json:"unit_code,omitempty"`
	TaxCategory string           `json:"tax_category,omitempty"`
	TaxPercent  *decimal.Decimal `json:"tax_percent,omitempty"`
}

// IssueInvoiceRequest body para POST /api/invoices y archivo de entrada del CLI.
// Los totales son opcionales: si se envían deben coincidir con la suma de líneas.
type IssueInvoiceRequest struct {
	Number           string               `json:"number,omitempty"`
	UUID             string               `json:"uuid,omitempty"`
	IssuedAt         *time.Time           `json:"issued_at,omitempty"`
	TypeCode         string               `json:"type_code,omitempty"`
	Currency         string               `json:"currency,omitempty"`
	PaymentMeansCode string               `json:"payment_means_code,omitempty"`
	DeliveryDate     *time.Time           `json:"delivery_date,omitempty"`
	Seller           PartyRequest         `json:"seller"`
	Buyer            *PartyRequest        `json:"buyer,omitempty"`
	Lines            []InvoiceLineRequest `json:"lines"`
	TotalWithoutVAT  *decimal.Decimal     `json:"total_without_vat,omitempty"`
	VATAmount        *decimal.Decimal     `json:"vat_amount,omitempty"`
	TotalWithVAT     *decimal.Decimal     `json:"total_with_vat,omitempty"`
}

// InvoiceLineResponse línea en las respuestas.
type InvoiceLineResponse struct {
	ID                  string          `json:"id"`
	Description         string          `json:"description"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitCode            string          `json:"unit_code"`
	TaxCategory         string          `json:"tax_category"`
	TaxPercent          decimal.Decimal `json:"tax_percent"`
	LineExtensionAmount decimal.Decimal `json:"line_extension_amount"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse factura emitida para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	Number     string                `json:"number"`
	UUID       string                `json:"uuid"`
	Profile    string                `json:"profile"`
	TypeCode   string                `json:"type_code"`
	Currency   string                `json:"currency"`
	IssuedAt   string                `json:"issued_at"`
	SellerVAT  string                `json:"seller_vat"`
	SellerName string                `json:"seller_name"`
	BuyerName  string                `json:"buyer_name,omitempty"`
	BuyerVAT   string                `json:"buyer_vat,omitempty"`
	ICV        int64                 `json:"icv"`
	PIH        string                `json:"pih"`
	Hash       string                `json:"hash"`
	QRPayload  string                `json:"qr_payload"`
	NetTotal   decimal.Decimal       `json:"net_total"`
	TaxTotal   decimal.Decimal       `json:"tax_total"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Lines      []InvoiceLineResponse `json:"lines,omitempty"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// QRFieldResponse campo TLV decodificado. Los tags binarios (8, 9) van en Base64.
type QRFieldResponse struct {
	Tag   int    `json:"tag"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QRResponse payload QR de una factura para GET /api/invoices/:id/qr.
type QRResponse struct {
	Payload string            `json:"payload"`
	Fields  []QRFieldResponse `json:"fields"`
}

// VerifyInvoiceRequest body para POST /api/invoices/verify.
// PublicKey es opcional (DER SubjectPublicKeyInfo en Base64).
type VerifyInvoiceRequest struct {
	XML       string `json:"xml"`
	PublicKey string `json:"public_key,omitempty"`
}

// VerifyInvoiceResponse resultado de la verificación.
type VerifyInvoiceResponse struct {
	Valid          bool     `json:"valid"`
	InvoiceID      string   `json:"invoice_id"`
	UUID           string   `json:"uuid"`
	ICV            int64    `json:"icv"`
	PIH            string   `json:"pih"`
	Hash           string   `json:"hash"`
	DigestValue    string   `json:"digest_value"`
	HashMatches    bool     `json:"hash_matches"`
	SignatureValid bool     `json:"signature_valid"`
	QRConsistent   bool     `json:"qr_consistent"`
	Problems       []string `json:"problems,omitempty"`
}

// ChainStatusResponse estado ICV/PIH de un emisor.
type ChainStatusResponse struct {
	SellerVAT string `json:"seller_vat"`
	Counter   int64  `json:"counter"`
	LastHash  string `json:"last_hash"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ChainEntryResponse factura vista desde la cadena.
type ChainEntryResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	ICV    int64  `json:"icv"`
	PIH    string `json:"pih"`
	Hash   string `json:"hash"`
}

// ChainAuditResponse resultado de auditar la cadena completa de un emisor.
type ChainAuditResponse struct {
	SellerVAT string               `json:"seller_vat"`
	Invoices  int                  `json:"invoices"`
	Valid     bool                 `json:"valid"`
	Error     string               `json:"error,omitempty"`
	Entries   []ChainEntryResponse `json:"entries"`
}
