package zatca

import (
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// CanonicalSerializer produce la forma canónica de la factura: los bloques canónicos
// renderizados en orden fijo y llevados a Exclusive C14N. Es la entrada del hash y de la firma.
type CanonicalSerializer struct {
	profile   pkgzatca.Profile
	precision int32
}

// NewCanonicalSerializer crea el serializador para un perfil y una precisión.
func NewCanonicalSerializer(profile pkgzatca.Profile, precision int32) *CanonicalSerializer {
	if precision <= 0 {
		precision = zatca.DefaultPrecision
	}
	return &CanonicalSerializer{profile: profile, precision: precision}
}

// Serialize valida la factura (incluidos ICV y PIH) y devuelve sus bytes canónicos.
// No incluye firma ni QR, que dependen de esta salida.
func (s *CanonicalSerializer) Serialize(inv *entity.Invoice) ([]byte, error) {
	if err := zatca.ValidateInvoice(inv, zatca.ValidationOptions{
		Profile:      s.profile,
		Precision:    s.precision,
		RequireChain: true,
	}); err != nil {
		return nil, err
	}
	raw, err := render(&renderContext{inv: inv, profile: s.profile, precision: s.precision}, true, false)
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "render", Err: err}
	}
	canonical, err := pkgzatca.Canonicalize(raw)
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "c14n", Err: err}
	}
	return canonical, nil
}
