package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

// IssueInvoiceUseCase emite facturas encadenadas: lee el estado del emisor con bloqueo,
// ejecuta el pipeline y persiste factura y nuevo estado en la misma transacción.
type IssueInvoiceUseCase struct {
	txRunner ChainTxRunner
	pipeline *Pipeline
	clock    func() time.Time
	log      zerolog.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(txRunner ChainTxRunner, pipeline *Pipeline) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{
		txRunner: txRunner,
		pipeline: pipeline,
		clock:    time.Now,
		log:      log.Logger,
	}
}

// Issue emite la factura descrita por req para la empresa companyID.
func (uc *IssueInvoiceUseCase) Issue(ctx context.Context, companyID string, req dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error) {
	cfg := uc.pipeline.Config()
	inv := InvoiceFromRequest(req, cfg)
	if inv.UUID == "" {
		inv.UUID = uuid.New().String()
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = uc.clock()
	}

	var issued *entity.IssuedInvoice
	err := uc.txRunner.RunChain(ctx, func(chainRepo repository.ChainRepository, invoiceRepo repository.InvoiceRepository) error {
		prev, err := chainRepo.GetForUpdate(ctx, inv.Seller.VATNumber)
		if err != nil {
			return fmt.Errorf("leer estado de cadena: %w", err)
		}
		res, err := uc.pipeline.Run(ctx, IssueInput{Invoice: inv, Previous: prev})
		if err != nil {
			return err
		}
		issued = NewIssuedInvoice(res, companyID, cfg.Profile, uc.clock().UTC())
		issued.ID = uuid.New().String()
		if err := invoiceRepo.Create(ctx, issued); err != nil {
			return err
		}
		state := res.State
		return chainRepo.Save(ctx, &state)
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("seller_vat", inv.Seller.VATNumber).
			Str("uuid", inv.UUID).
			Msg("billing: emisión de factura fallida")
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", issued.ID).
		Str("seller_vat", issued.SellerVAT).
		Int64("icv", issued.ICV).
		Msg("billing: factura emitida")
	resp := ToInvoiceResponse(issued)
	return &resp, nil
}
