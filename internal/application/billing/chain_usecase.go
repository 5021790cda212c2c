package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// ChainUseCase estado y auditoría de la cadena ICV/PIH de un emisor.
type ChainUseCase struct {
	chainRepo   repository.ChainRepository
	invoiceRepo repository.InvoiceRepository
}

// NewChainUseCase construye el caso de uso.
func NewChainUseCase(chainRepo repository.ChainRepository, invoiceRepo repository.InvoiceRepository) *ChainUseCase {
	return &ChainUseCase{chainRepo: chainRepo, invoiceRepo: invoiceRepo}
}

// Status devuelve el último ICV y hash del emisor. Un emisor sin facturas devuelve contador 0
// y el PIH placeholder que usará su primera factura.
func (uc *ChainUseCase) Status(ctx context.Context, sellerVAT string) (*dto.ChainStatusResponse, error) {
	if err := pkgzatca.ValidateVATNumber(sellerVAT); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	state, err := uc.chainRepo.Get(ctx, sellerVAT)
	if err != nil {
		return nil, fmt.Errorf("obtener cadena: %w", err)
	}
	if state == nil || state.Counter == 0 {
		return &dto.ChainStatusResponse{SellerVAT: sellerVAT, LastHash: zatca.PlaceholderPIH}, nil
	}
	return &dto.ChainStatusResponse{
		SellerVAT: state.SellerVAT,
		Counter:   state.Counter,
		LastHash:  state.LastHash,
		UpdatedAt: state.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// Audit recorre todas las facturas del emisor y verifica ICV 1..N y cada PIH.
// También compara el final de la cadena con el estado guardado.
func (uc *ChainUseCase) Audit(ctx context.Context, sellerVAT string) (*dto.ChainAuditResponse, error) {
	if err := pkgzatca.ValidateVATNumber(sellerVAT); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	list, err := uc.invoiceRepo.ListChain(ctx, sellerVAT)
	if err != nil {
		return nil, fmt.Errorf("listar cadena: %w", err)
	}
	resp := &dto.ChainAuditResponse{
		SellerVAT: sellerVAT,
		Invoices:  len(list),
		Entries:   make([]dto.ChainEntryResponse, 0, len(list)),
	}
	entries := make([]zatca.ChainEntry, 0, len(list))
	for _, inv := range list {
		entries = append(entries, zatca.ChainEntry{ICV: inv.ICV, PIH: inv.PIH, Hash: inv.Hash})
		resp.Entries = append(resp.Entries, dto.ChainEntryResponse{
			ID: inv.ID, Number: inv.Number, ICV: inv.ICV, PIH: inv.PIH, Hash: inv.Hash,
		})
	}
	if err := zatca.VerifySequence(entries); err != nil {
		resp.Error = err.Error()
		return resp, nil
	}

	state, err := uc.chainRepo.Get(ctx, sellerVAT)
	if err != nil {
		return nil, fmt.Errorf("obtener cadena: %w", err)
	}
	if n := len(entries); n > 0 {
		last := entries[n-1]
		if state == nil || state.Counter != last.ICV || state.LastHash != last.Hash {
			resp.Error = "el estado guardado no coincide con la última factura"
			return resp, nil
		}
	}
	resp.Valid = true
	return resp, nil
}
