package signer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
)

// ErrInvalidSignature la firma no corresponde a los bytes y la llave dados.
var ErrInvalidSignature = errors.New("zatca: firma inválida")

// KeyPair llave privada P-256 y, opcionalmente, su certificado (CSID o autofirmado).
type KeyPair struct {
	Private     *ecdsa.PrivateKey
	Certificate *x509.Certificate
}

// String nunca expone la llave privada.
func (k *KeyPair) String() string {
	if k == nil || k.Private == nil {
		return "KeyPair(vacío)"
	}
	if k.Certificate != nil {
		return fmt.Sprintf("KeyPair(P-256, cert=%s)", k.Certificate.Subject.CommonName)
	}
	return "KeyPair(P-256)"
}

// GoString evita que %#v imprima la llave.
func (k *KeyPair) GoString() string { return k.String() }

// Public llave pública del par.
func (k *KeyPair) Public() *ecdsa.PublicKey {
	if k == nil || k.Private == nil {
		return nil
	}
	return &k.Private.PublicKey
}

// GenerateKeyPair genera un par nuevo en la curva P-256.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, &zatca.SigningError{Op: "generar llave", Err: err}
	}
	return &KeyPair{Private: priv}, nil
}

func checkCurve(pub *ecdsa.PublicKey) error {
	if pub == nil {
		return errors.New("llave ausente")
	}
	if pub.Curve != elliptic.P256() {
		return fmt.Errorf("curva %s no soportada, se requiere %s", pub.Curve.Params().Name, CurveP256)
	}
	return nil
}

// Sign firma SHA-256(canonical) con ECDSA y devuelve la firma ASN.1 DER en Base64.
func Sign(priv *ecdsa.PrivateKey, canonical []byte) (string, error) {
	if len(canonical) == 0 {
		return "", &zatca.SigningError{Op: "firmar", Err: errors.New("forma canónica no disponible")}
	}
	digest := sha256.Sum256(canonical)
	sig, err := SignDigest(priv, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// SignDigest firma un resumen SHA-256 ya calculado y devuelve la firma DER.
func SignDigest(priv *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	if priv == nil {
		return nil, &zatca.SigningError{Op: "firmar", Err: errors.New("llave privada ausente")}
	}
	if err := checkCurve(&priv.PublicKey); err != nil {
		return nil, &zatca.SigningError{Op: "firmar", Err: err}
	}
	if len(digest) != sha256.Size {
		return nil, &zatca.SigningError{Op: "firmar", Err: fmt.Errorf("resumen de %d bytes, se esperaban %d", len(digest), sha256.Size)}
	}
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest)
	if err != nil {
		return nil, &zatca.SigningError{Op: "firmar", Err: err}
	}
	return sig, nil
}

// Verify comprueba una firma Base64 DER sobre SHA-256(canonical).
func Verify(pub *ecdsa.PublicKey, canonical []byte, signatureB64 string) error {
	if err := checkCurve(pub); err != nil {
		return &zatca.SigningError{Op: "verificar", Err: err}
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return &zatca.SigningError{Op: "verificar", Err: fmt.Errorf("firma Base64 inválida: %w", err)}
	}
	digest := sha256.Sum256(canonical)
	if !ecdsa.VerifyASN1(pub, digest[:], sig) {
		return &zatca.SigningError{Op: "verificar", Err: ErrInvalidSignature}
	}
	return nil
}

// EncodePublicKey codifica la llave pública en DER SubjectPublicKeyInfo (tag 8 del QR).
func EncodePublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	if err := checkCurve(pub); err != nil {
		return nil, &zatca.SigningError{Op: "codificar llave pública", Err: err}
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, &zatca.SigningError{Op: "codificar llave pública", Err: err}
	}
	return der, nil
}

// PublicKeyPoint codifica la llave como punto no comprimido (0x04 || X || Y).
func PublicKeyPoint(pub *ecdsa.PublicKey) ([]byte, error) {
	if err := checkCurve(pub); err != nil {
		return nil, &zatca.SigningError{Op: "codificar punto", Err: err}
	}
	ecdhKey, err := pub.ECDH()
	if err != nil {
		return nil, &zatca.SigningError{Op: "codificar punto", Err: err}
	}
	return ecdhKey.Bytes(), nil
}

// DecodePublicKey interpreta una llave DER SubjectPublicKeyInfo P-256.
func DecodePublicKey(der []byte) (*ecdsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, &zatca.SigningError{Op: "leer llave pública", Err: err}
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, &zatca.SigningError{Op: "leer llave pública", Err: errors.New("la llave no es ECDSA")}
	}
	if err := checkCurve(pub); err != nil {
		return nil, &zatca.SigningError{Op: "leer llave pública", Err: err}
	}
	return pub, nil
}

// PublicKeySignature valor del tag 9: la firma del certificado si existe; si no,
// la firma propia sobre SHA-256 de la llave pública DER.
func PublicKeySignature(k *KeyPair) ([]byte, error) {
	if k == nil || k.Private == nil {
		return nil, &zatca.SigningError{Op: "firma de llave pública", Err: errors.New("par de llaves ausente")}
	}
	if k.Certificate != nil && len(k.Certificate.Signature) > 0 {
		return append([]byte(nil), k.Certificate.Signature...), nil
	}
	der, err := EncodePublicKey(k.Public())
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(der)
	return SignDigest(k.Private, digest[:])
}
