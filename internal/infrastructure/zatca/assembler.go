package zatca

import (
	"context"
	"errors"

	"github.com/beevik/etree"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// Assembler compone el documento final con todos los bloques en orden e inyecta
// ds:Signature dentro de sac:SignatureInformation.
type Assembler struct {
	profile   pkgzatca.Profile
	precision int32
}

// NewAssembler crea el ensamblador.
func NewAssembler(profile pkgzatca.Profile, precision int32) *Assembler {
	if precision <= 0 {
		precision = zatca.DefaultPrecision
	}
	return &Assembler{profile: profile, precision: precision}
}

// Assemble emite el documento UTF-8. La factura debe traer ICV, PIH, hash, firma y QR;
// signatureXML es el nodo ds:Signature completo.
func (a *Assembler) Assemble(ctx context.Context, inv *entity.Invoice, signatureXML string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := zatca.ValidateInvoice(inv, zatca.ValidationOptions{
		Profile:      a.profile,
		Precision:    a.precision,
		RequireChain: true,
	}); err != nil {
		return nil, err
	}
	var errs []error
	if inv.Hash == "" {
		errs = append(errs, zatca.NewValidationError("hash", "", "la factura no tiene hash"))
	}
	if inv.Signature == "" || signatureXML == "" {
		errs = append(errs, zatca.NewValidationError("signature", "", "la factura no está firmada"))
	}
	if inv.QRPayload == "" {
		errs = append(errs, zatca.NewValidationError("qr", "", "la factura no tiene payload QR"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(append([]error{zatca.ErrValidation}, errs...)...)
	}

	raw, err := render(&renderContext{inv: inv, profile: a.profile, precision: a.precision}, false, true)
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "render", Err: err}
	}
	return injectSignature(raw, signatureXML)
}

// injectSignature agrega ds:Signature como último hijo de sac:SignatureInformation.
func injectSignature(doc []byte, signatureXML string) ([]byte, error) {
	d := etree.NewDocument()
	if err := d.ReadFromBytes(doc); err != nil {
		return nil, &zatca.SerializationError{Stage: "inyectar firma", Err: err}
	}
	info := d.FindElement("/Invoice/ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent/sig:UBLDocumentSignatures/sac:SignatureInformation")
	if info == nil {
		return nil, &zatca.SerializationError{Stage: "inyectar firma", Err: errors.New("sac:SignatureInformation no encontrado")}
	}
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, &zatca.SerializationError{Stage: "inyectar firma", Err: err}
	}
	sig := sigDoc.Root()
	if sig == nil || sig.Tag != "Signature" {
		return nil, &zatca.SerializationError{Stage: "inyectar firma", Err: errors.New("el nodo de firma no es ds:Signature")}
	}
	info.AddChild(sig)
	out, err := d.WriteToBytes()
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "inyectar firma", Err: err}
	}
	return out, nil
}
