package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// Pipeline ejecuta, de forma síncrona y para una sola factura:
//
//	validar → forma canónica → hash → firma → QR → documento ensamblado
//
// No guarda estado de cadena: recibe el estado anterior y devuelve el nuevo.
// Facturas de un mismo emisor deben procesarse en serie (ver IssueInvoiceUseCase).
type Pipeline struct {
	cfg        PipelineConfig
	serializer *infrazatca.CanonicalSerializer
	assembler  *infrazatca.Assembler
	qr         *zatca.QREncoder
	signer     pkgzatca.Signer
	clock      func() time.Time
	log        zerolog.Logger
}

// PipelineOption configura el pipeline.
type PipelineOption func(*Pipeline)

// WithClock fija el reloj usado cuando la factura no trae fecha de emisión.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.clock = clock }
}

// WithLogger inyecta el logger.
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline construye el pipeline. Sin firmador no hay pipeline.
func NewPipeline(cfg PipelineConfig, signer pkgzatca.Signer, opts ...PipelineOption) (*Pipeline, error) {
	if signer == nil {
		return nil, &zatca.SigningError{Op: "pipeline", Err: errors.New("firmador ausente")}
	}
	cfg = cfg.withDefaults()
	qr, err := zatca.NewQREncoder(cfg.QRTags, cfg.Precision)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:        cfg,
		serializer: infrazatca.NewCanonicalSerializer(cfg.Profile, cfg.Precision),
		assembler:  infrazatca.NewAssembler(cfg.Profile, cfg.Precision),
		qr:         qr,
		signer:     signer,
		clock:      time.Now,
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config devuelve la configuración efectiva.
func (p *Pipeline) Config() PipelineConfig { return p.cfg }

// IssueInput factura a emitir y estado de la cadena del emisor (nil para la primera factura).
type IssueInput struct {
	Invoice  *entity.Invoice
	Previous *entity.ChainState
}

// Result artefactos de una emisión exitosa.
type Result struct {
	Invoice   *entity.Invoice // copia enriquecida: ICV, PIH, hash, firma y QR
	Canonical []byte
	Hash      zatca.Hash
	QRPayload string
	Document  []byte
	State     entity.ChainState // estado a persistir para la siguiente factura
}

// Run emite la factura. La entrada no se modifica; ante cualquier error no hay resultado parcial.
func (p *Pipeline) Run(ctx context.Context, in IssueInput) (*Result, error) {
	if in.Invoice == nil {
		return nil, zatca.NewValidationError("invoice", "", "factura nula")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := in.Invoice.Clone()
	p.applyDefaults(inv)

	logger := p.log.With().Str("seller_vat", inv.Seller.VATNumber).Logger()

	link, err := zatca.Begin(in.Previous)
	if err != nil {
		logger.Debug().Str("stage", "chain").Err(err).Msg("zatca: cadena rechazada")
		return nil, err
	}
	if inv.ICV != 0 && inv.ICV != link.ICV {
		return nil, &zatca.ChainError{Field: "icv", Message: fmt.Sprintf("la factura trae %d, la cadena espera %d", inv.ICV, link.ICV)}
	}
	if inv.PIH != "" && inv.PIH != link.PIH {
		return nil, &zatca.ChainError{Field: "pih", Message: "la factura no continúa el hash de la cadena"}
	}
	inv.ICV, inv.PIH = link.ICV, link.PIH
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("INV-%s-%03d", inv.IssuedAt.Format("20060102"), inv.ICV)
	}
	logger = logger.With().Str("invoice_id", inv.ID).Int64("icv", inv.ICV).Logger()

	canonical, err := p.serializer.Serialize(inv)
	if err != nil {
		logger.Debug().Str("stage", "canonical").Err(err).Msg("zatca: forma canónica rechazada")
		return nil, err
	}
	h, err := zatca.ComputeInvoiceHash(canonical)
	if err != nil {
		return nil, err
	}
	inv.Hash = h.Base64
	logger.Debug().Str("stage", "hash").Str("hash", h.Base64).Msg("zatca: hash calculado")

	signature, err := p.signer.Sign(canonical)
	if err != nil {
		logger.Debug().Str("stage", "sign").Err(err).Msg("zatca: firma fallida")
		return nil, err
	}
	publicKey, err := p.signer.PublicKey()
	if err != nil {
		return nil, err
	}
	var publicKeySig []byte
	if p.qr.Tags().Contains(zatca.TagPublicKeySignature) {
		if publicKeySig, err = p.signer.PublicKeySignature(); err != nil {
			return nil, err
		}
	}
	inv.Signature = signature

	payload, err := p.qr.Encode(zatca.QRFields{
		SellerName:         inv.Seller.Name,
		VATNumber:          inv.Seller.VATNumber,
		Timestamp:          inv.IssuedAt,
		TotalWithVAT:       inv.TotalWithTax,
		VATTotal:           inv.TaxTotal,
		InvoiceHash:        inv.Hash,
		Signature:          inv.Signature,
		PublicKey:          publicKey,
		PublicKeySignature: publicKeySig,
	})
	if err != nil {
		logger.Debug().Str("stage", "qr").Err(err).Msg("zatca: QR rechazado")
		return nil, err
	}
	inv.QRPayload = payload

	sigXML, err := p.signer.SignatureXML(inv.Hash, inv.Signature)
	if err != nil {
		return nil, err
	}
	document, err := p.assembler.Assemble(ctx, inv, sigXML)
	if err != nil {
		logger.Debug().Str("stage", "assemble").Err(err).Msg("zatca: ensamblado fallido")
		return nil, err
	}

	state := zatca.Commit(inv.Seller.VATNumber, link, h)
	state.UpdatedAt = p.clock().UTC()
	logger.Debug().Str("stage", "done").Int("document_bytes", len(document)).Msg("zatca: factura emitida")

	return &Result{
		Invoice:   inv,
		Canonical: canonical,
		Hash:      h,
		QRPayload: payload,
		Document:  document,
		State:     state,
	}, nil
}

// applyDefaults completa moneda, tipo, UUID y fecha; la fecha queda en UTC con precisión de segundos.
func (p *Pipeline) applyDefaults(inv *entity.Invoice) {
	if inv.Currency == "" {
		inv.Currency = p.cfg.Currency
	}
	if inv.TaxCurrency == "" {
		inv.TaxCurrency = p.cfg.TaxCurrency
	}
	if inv.TypeCode == "" {
		inv.TypeCode = pkgzatca.InvoiceTypeTaxInvoice
	}
	if inv.UUID == "" {
		inv.UUID = uuid.New().String()
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = p.clock()
	}
	inv.IssuedAt = inv.IssuedAt.UTC().Truncate(time.Second)
}
