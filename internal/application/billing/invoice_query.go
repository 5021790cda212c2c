package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

// InvoiceQueryUseCase consultas sobre facturas emitidas.
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo}
}

// load obtiene la factura y verifica que pertenezca a la empresa del token.
func (uc *InvoiceQueryUseCase) load(ctx context.Context, companyID, id string) (*entity.IssuedInvoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetXML devuelve el documento firmado tal como se emitió.
func (uc *InvoiceQueryUseCase) GetXML(ctx context.Context, companyID, id string) ([]byte, string, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	return inv.XML, fmt.Sprintf("%s_%s.xml", inv.SellerVAT, inv.Number), nil
}

// GetQR devuelve el payload QR decodificado.
func (uc *InvoiceQueryUseCase) GetQR(ctx context.Context, companyID, id string) (*dto.QRResponse, error) {
	inv, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return DecodeQRFields(inv.QRPayload)
}

// ListBySeller lista las facturas del emisor visibles para la empresa.
func (uc *InvoiceQueryUseCase) ListBySeller(ctx context.Context, companyID, sellerVAT string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	list, err := uc.invoiceRepo.ListBySeller(ctx, sellerVAT, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, inv := range list {
		if inv.CompanyID != companyID {
			continue
		}
		out.Items = append(out.Items, ToInvoiceResponse(inv))
	}
	return out, nil
}
