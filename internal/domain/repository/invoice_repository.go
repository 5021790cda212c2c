package repository

import (
	"context"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia de las facturas emitidas.
// Las facturas emitidas no se actualizan: el documento firmado es inmutable.
type InvoiceRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, inv *entity.IssuedInvoice) error
	// GetByID devuelve la factura con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.IssuedInvoice, error)
	ListBySeller(ctx context.Context, sellerVAT string, limit, offset int) ([]*entity.IssuedInvoice, error)
	// ListChain devuelve id, número, ICV, PIH y hash de la cadena ordenada por ICV.
	ListChain(ctx context.Context, sellerVAT string) ([]*entity.IssuedInvoice, error)
}
