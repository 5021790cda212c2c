// Carga de llaves y certificados (PEM, PKCS#12) y certificado autofirmado.

package signer

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// LoadFromPEM carga la llave privada EC (SEC1 o PKCS#8) y, si certPath no es vacío, el certificado.
func LoadFromPEM(keyPath, certPath string) (*KeyPair, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("leer llave PEM: %w", err)
	}
	priv, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, err
	}
	kp := &KeyPair{Private: priv}
	if certPath == "" {
		return kp, nil
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("leer certificado PEM: %w", err)
	}
	cert, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, err
	}
	if err := matchKeyAndCert(priv, cert); err != nil {
		return nil, err
	}
	kp.Certificate = cert
	return kp, nil
}

// LoadFromP12 carga llave y certificado desde un .p12/.pfx.
func LoadFromP12(path, password string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer p12: %w", err)
	}
	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, fmt.Errorf("decodificar p12: %w", err)
	}
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("p12: la llave privada debe ser ECDSA")
	}
	if err := checkCurve(&priv.PublicKey); err != nil {
		return nil, fmt.Errorf("p12: %w", err)
	}
	return &KeyPair{Private: priv, Certificate: cert}, nil
}

// ParsePrivateKeyPEM interpreta un bloque "EC PRIVATE KEY" o "PRIVATE KEY".
func ParsePrivateKeyPEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("llave PEM: no se encontró bloque PEM")
	}
	var priv *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("llave PEM: %w", err)
		}
		priv = k
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("llave PEM: %w", err)
		}
		ec, ok := k.(*ecdsa.PrivateKey)
		if !ok {
			return nil, errors.New("llave PEM: la llave no es ECDSA")
		}
		priv = ec
	default:
		return nil, fmt.Errorf("llave PEM: tipo de bloque %q no soportado", block.Type)
	}
	if err := checkCurve(&priv.PublicKey); err != nil {
		return nil, fmt.Errorf("llave PEM: %w", err)
	}
	return priv, nil
}

// ParseCertificatePEM interpreta un bloque "CERTIFICATE".
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("certificado PEM: no se encontró bloque CERTIFICATE")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("certificado PEM: %w", err)
	}
	return cert, nil
}

// EncodePrivateKeyPEM serializa la llave en SEC1 ("EC PRIVATE KEY").
func EncodePrivateKeyPEM(priv *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("serializar llave: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}

// EncodeCertificatePEM serializa el certificado.
func EncodeCertificatePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

// SelfSign emite un certificado autofirmado para el par (uso en pruebas y sandbox).
func SelfSign(kp *KeyPair, commonName, vatNumber string, now time.Time) error {
	if kp == nil || kp.Private == nil {
		return errors.New("certificado: par de llaves ausente")
	}
	if commonName == "" {
		commonName = DefaultCertCommonName
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return fmt.Errorf("certificado: serial: %w", err)
	}
	subject := pkix.Name{
		CommonName:         commonName,
		Country:            []string{"SA"},
		OrganizationalUnit: []string{vatNumber},
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		Issuer:                subject,
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, kp.Public(), kp.Private)
	if err != nil {
		return fmt.Errorf("certificado: crear: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return fmt.Errorf("certificado: parsear: %w", err)
	}
	kp.Certificate = cert
	return nil
}

// CertDigestAndIssuerSerial devuelve el digest SHA-256 del certificado (Base64), el emisor y el serial decimal para XAdES.
func CertDigestAndIssuerSerial(cert *x509.Certificate) (digestB64 string, issuerName string, serial string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serial = cert.SerialNumber.String()
	return digestB64, issuerName, serial
}

func matchKeyAndCert(priv *ecdsa.PrivateKey, cert *x509.Certificate) error {
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok || !pub.Equal(&priv.PublicKey) {
		return errors.New("el certificado no corresponde a la llave privada")
	}
	return nil
}
