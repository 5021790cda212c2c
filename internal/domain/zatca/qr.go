package zatca

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// Tag identificador de un campo TLV del QR. El orden numérico es el orden de escritura.
type Tag byte

const (
	TagSellerName         Tag = 1
	TagVATNumber          Tag = 2
	TagTimestamp          Tag = 3
	TagTotalWithVAT       Tag = 4
	TagVATTotal           Tag = 5
	TagInvoiceHash        Tag = 6
	TagSignature          Tag = 7
	TagPublicKey          Tag = 8
	TagPublicKeySignature Tag = 9
)

// maxTLVValue longitud máxima de un valor (el largo ocupa un byte).
const maxTLVValue = 255

// QRTimestampLayout formato del tag 3 (UTC, precisión de segundos).
const QRTimestampLayout = "2006-01-02T15:04:05Z"

var tagNames = map[Tag]string{
	TagSellerName:         "seller_name",
	TagVATNumber:          "vat_number",
	TagTimestamp:          "timestamp",
	TagTotalWithVAT:       "total_with_vat",
	TagVATTotal:           "vat_total",
	TagInvoiceHash:        "invoice_hash",
	TagSignature:          "signature",
	TagPublicKey:          "public_key",
	TagPublicKeySignature: "public_key_signature",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "tag_" + strconv.Itoa(int(t))
}

// TagSet tags activos de un perfil, en orden de escritura.
type TagSet []Tag

var (
	// SimplifiedTags facturas simplificadas: 1..9 (incluye firma del certificado).
	SimplifiedTags = TagSet{1, 2, 3, 4, 5, 6, 7, 8, 9}
	// StandardTags facturas estándar: 1..8.
	StandardTags = TagSet{1, 2, 3, 4, 5, 6, 7, 8}
)

// TagSetForProfile juego de tags por defecto del perfil.
func TagSetForProfile(p pkgzatca.Profile) TagSet {
	if p == pkgzatca.ProfileStandard {
		return append(TagSet(nil), StandardTags...)
	}
	return append(TagSet(nil), SimplifiedTags...)
}

// ParseTagSet interpreta una lista de configuración "1,2,3,...".
func ParseTagSet(s string) (TagSet, error) {
	var out TagSet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("zatca: tag QR inválido %q", part)
		}
		out = append(out, Tag(n))
	}
	return out, out.Validate()
}

// Validate exige tags conocidos, sin repetir y en orden ascendente empezando en 1.
func (ts TagSet) Validate() error {
	if len(ts) == 0 {
		return NewValidationError("qr.tags", "", "el juego de tags está vacío")
	}
	if ts[0] != TagSellerName {
		return NewValidationError("qr.tags", ts[0].String(), "el juego de tags debe comenzar en 1")
	}
	for i, t := range ts {
		if _, ok := tagNames[t]; !ok {
			return NewValidationError("qr.tags", strconv.Itoa(int(t)), "tag desconocido")
		}
		if i > 0 && t <= ts[i-1] {
			return NewValidationError("qr.tags", strconv.Itoa(int(t)), "los tags deben ser crecientes y sin repetir")
		}
	}
	return nil
}

// Contains indica si el tag está activo.
func (ts TagSet) Contains(tag Tag) bool {
	for _, t := range ts {
		if t == tag {
			return true
		}
	}
	return false
}

// QRFields valores de entrada del QR.
type QRFields struct {
	SellerName         string
	VATNumber          string
	Timestamp          time.Time
	TotalWithVAT       decimal.Decimal
	VATTotal           decimal.Decimal
	InvoiceHash        string // Base64
	Signature          string // Base64
	PublicKey          []byte // DER
	PublicKeySignature []byte
}

// QREncoder codifica el payload TLV para un juego de tags.
type QREncoder struct {
	tags      TagSet
	precision int32
}

// NewQREncoder construye el codificador; falla si el juego de tags no es válido.
func NewQREncoder(tags TagSet, precision int32) (*QREncoder, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return &QREncoder{tags: append(TagSet(nil), tags...), precision: precision}, nil
}

// Tags devuelve el juego de tags activo.
func (e *QREncoder) Tags() TagSet { return append(TagSet(nil), e.tags...) }

// Encode concatena tag(1 byte) + largo(1 byte) + valor por cada tag activo y lo codifica en Base64.
// Un tag activo sin valor, o con más de 255 bytes, es un ValidationError.
func (e *QREncoder) Encode(f QRFields) (string, error) {
	var buf []byte
	for _, tag := range e.tags {
		value := e.value(tag, f)
		if len(value) == 0 {
			return "", NewValidationError("qr."+tag.String(), "", "valor obligatorio para el perfil")
		}
		if len(value) > maxTLVValue {
			return "", NewValidationError("qr."+tag.String(), strconv.Itoa(len(value)), "el valor supera 255 bytes")
		}
		buf = append(buf, byte(tag), byte(len(value)))
		buf = append(buf, value...)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (e *QREncoder) value(tag Tag, f QRFields) []byte {
	switch tag {
	case TagSellerName:
		return []byte(f.SellerName)
	case TagVATNumber:
		return []byte(f.VATNumber)
	case TagTimestamp:
		if f.Timestamp.IsZero() {
			return nil
		}
		return []byte(f.Timestamp.UTC().Format(QRTimestampLayout))
	case TagTotalWithVAT:
		return []byte(FormatAmount(f.TotalWithVAT, e.precision))
	case TagVATTotal:
		return []byte(FormatAmount(f.VATTotal, e.precision))
	case TagInvoiceHash:
		return []byte(f.InvoiceHash)
	case TagSignature:
		return []byte(f.Signature)
	case TagPublicKey:
		return f.PublicKey
	case TagPublicKeySignature:
		return f.PublicKeySignature
	}
	return nil
}

// TLVField campo decodificado del QR.
type TLVField struct {
	Tag   Tag
	Value []byte
}

// DecodeQR recorre el flujo TLV posicionalmente.
func DecodeQR(payload string) ([]TLVField, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewValidationError("qr", "", "payload Base64 inválido")
	}
	var out []TLVField
	for i := 0; i < len(raw); {
		if i+2 > len(raw) {
			return nil, NewValidationError("qr", strconv.Itoa(i), "TLV truncado: falta el largo")
		}
		tag, n := Tag(raw[i]), int(raw[i+1])
		i += 2
		if i+n > len(raw) {
			return nil, NewValidationError("qr."+tag.String(), strconv.Itoa(n), "TLV truncado: valor incompleto")
		}
		out = append(out, TLVField{Tag: tag, Value: append([]byte(nil), raw[i:i+n]...)})
		i += n
	}
	return out, nil
}

// FieldValue devuelve el valor del tag en una lista decodificada.
func FieldValue(fields []TLVField, tag Tag) ([]byte, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return nil, false
}
