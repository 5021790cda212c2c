package billing

import (
	"context"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

// ChainTxRunner ejecuta una función dentro de una transacción con los repos de cadena y facturas.
// Es el único escritor de la cadena de un emisor: la fila de estado se bloquea dentro de fn.
type ChainTxRunner interface {
	RunChain(ctx context.Context, fn func(
		chainRepo repository.ChainRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// InvoicePDFGenerator genera la representación impresa de una factura emitida.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.IssuedInvoice) ([]byte, error)
}
