package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssuedInvoice factura ya firmada y persistida. XML es el documento ensamblado, inmutable.
type IssuedInvoice struct {
	ID         string
	CompanyID  string
	SellerVAT  string
	SellerName string
	BuyerName  string
	BuyerVAT   string
	Number     string
	UUID       string
	Profile    string
	TypeCode   string
	Currency   string
	IssuedAt   time.Time
	ICV        int64
	PIH        string
	Hash       string
	Signature  string
	QRPayload  string
	XML        []byte
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	Lines      []LineItem
	CreatedAt  time.Time
}
