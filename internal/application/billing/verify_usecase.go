package billing

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
)

// VerifyUseCase verifica documentos firmados por cualquier emisor.
type VerifyUseCase struct{}

// NewVerifyUseCase construye el caso de uso.
func NewVerifyUseCase() *VerifyUseCase {
	return &VerifyUseCase{}
}

// Verify re-deriva la forma canónica del documento y comprueba hash, firma y QR.
func (uc *VerifyUseCase) Verify(ctx context.Context, req dto.VerifyInvoiceRequest) (*dto.VerifyInvoiceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.XML == "" {
		return nil, fmt.Errorf("%w: xml vacío", domain.ErrInvalidInput)
	}
	var pub *ecdsa.PublicKey
	if req.PublicKey != "" {
		der, err := base64.StdEncoding.DecodeString(req.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: public_key no es Base64", domain.ErrInvalidInput)
		}
		if pub, err = signer.DecodePublicKey(der); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}
	rep, err := infrazatca.Verify([]byte(req.XML), pub)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyInvoiceResponse{
		Valid:          rep.Valid(),
		InvoiceID:      rep.InvoiceID,
		UUID:           rep.UUID,
		ICV:            rep.ICV,
		PIH:            rep.PIH,
		Hash:           rep.Hash,
		DigestValue:    rep.DigestValue,
		HashMatches:    rep.HashMatches,
		SignatureValid: rep.SignatureValid,
		QRConsistent:   rep.QRConsistent,
		Problems:       rep.Problems,
	}, nil
}
