// Servicio de sello criptográfico ZATCA: firma ECDSA P-256 sobre la forma canónica
// y construcción del nodo ds:Signature (XMLDSig + XAdES) que el ensamblador inyecta.

package signer

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// Service implementa pkgzatca.Signer con un par de llaves en memoria.
type Service struct {
	keys  *KeyPair
	clock func() time.Time
}

// Option configura el servicio.
type Option func(*Service)

// WithClock fija el reloj usado para xades:SigningTime.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService crea el servicio. Sin llave no hay servicio: nunca se emite un documento sin firmar.
func NewService(keys *KeyPair, opts ...Option) (*Service, error) {
	if keys == nil || keys.Private == nil {
		return nil, &zatca.SigningError{Op: "inicializar", Err: errors.New("par de llaves ausente")}
	}
	if err := checkCurve(keys.Public()); err != nil {
		return nil, &zatca.SigningError{Op: "inicializar", Err: err}
	}
	s := &Service{keys: keys, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign implementa pkgzatca.Signer.
func (s *Service) Sign(canonical []byte) (string, error) {
	return Sign(s.keys.Private, canonical)
}

// PublicKey implementa pkgzatca.Signer.
func (s *Service) PublicKey() ([]byte, error) {
	return EncodePublicKey(s.keys.Public())
}

// PublicKeySignature implementa pkgzatca.Signer.
func (s *Service) PublicKeySignature() ([]byte, error) {
	return PublicKeySignature(s.keys)
}

// SignatureXML implementa pkgzatca.Signer. El nodo devuelto declara sus propios namespaces.
func (s *Service) SignatureXML(invoiceHash, signatureValue string) (string, error) {
	if invoiceHash == "" || signatureValue == "" {
		return "", &zatca.SigningError{Op: "construir ds:Signature", Err: errors.New("hash o firma ausentes")}
	}
	keyInfo, err := s.buildKeyInfo()
	if err != nil {
		return "", err
	}

	var signedProps, propsDigest string
	if s.keys.Certificate != nil {
		signedProps = s.buildSignedProperties()
		standalone := strings.Replace(signedProps, "<xades:SignedProperties ",
			`<xades:SignedProperties xmlns:ds="`+NamespaceDS+`" xmlns:xades="`+NamespaceXAdES+`" `, 1)
		canonical, err := pkgzatca.Canonicalize([]byte(standalone))
		if err != nil {
			return "", &zatca.SigningError{Op: "canonicalizar SignedProperties", Err: err}
		}
		sum := sha256.Sum256(canonical)
		propsDigest = base64.StdEncoding.EncodeToString(sum[:])
	}

	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" Id="` + SignatureID + `">`)
	sb.WriteString(s.buildSignedInfo(invoiceHash, propsDigest))
	sb.WriteString(`<ds:SignatureValue>` + signatureValue + `</ds:SignatureValue>`)
	sb.WriteString(keyInfo)
	if signedProps != "" {
		sb.WriteString(`<ds:Object><xades:QualifyingProperties xmlns:xades="` + NamespaceXAdES + `" Target="` + SignatureID + `">`)
		sb.WriteString(signedProps)
		sb.WriteString(`</xades:QualifyingProperties></ds:Object>`)
	}
	sb.WriteString(`</ds:Signature>`)
	return sb.String(), nil
}

func (s *Service) buildSignedInfo(invoiceHash, propsDigest string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo>`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgExcC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgECDSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference Id="` + ReferenceID + `" URI="">`)
	sb.WriteString(`<ds:Transforms>`)
	for _, xp := range ReferenceXPaths {
		sb.WriteString(`<ds:Transform Algorithm="` + AlgXPath + `"><ds:XPath>` + escapeXML(xp) + `</ds:XPath></ds:Transform>`)
	}
	sb.WriteString(`<ds:Transform Algorithm="` + AlgExcC14N + `"/>`)
	sb.WriteString(`</ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + invoiceHash + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	if propsDigest != "" {
		sb.WriteString(`<ds:Reference Type="` + TypeSignedProp + `" URI="#` + SignedPropertiesID + `">`)
		sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
		sb.WriteString(`<ds:DigestValue>` + propsDigest + `</ds:DigestValue>`)
		sb.WriteString(`</ds:Reference>`)
	}
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

// buildKeyInfo usa el certificado si existe; si no, la llave pública como ECKeyValue.
func (s *Service) buildKeyInfo() (string, error) {
	if cert := s.keys.Certificate; cert != nil {
		return `<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` +
			base64.StdEncoding.EncodeToString(cert.Raw) +
			`</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`, nil
	}
	point, err := PublicKeyPoint(s.keys.Public())
	if err != nil {
		return "", err
	}
	return `<ds:KeyInfo><ds:KeyValue><dsig11:ECKeyValue xmlns:dsig11="` + NamespaceDSig11 + `">` +
		`<dsig11:NamedCurve URI="` + CurveP256OID + `"/>` +
		`<dsig11:PublicKey>` + base64.StdEncoding.EncodeToString(point) + `</dsig11:PublicKey>` +
		`</dsig11:ECKeyValue></ds:KeyValue></ds:KeyInfo>`, nil
}

func (s *Service) buildSignedProperties() string {
	certDigest, issuer, serial := CertDigestAndIssuerSerial(s.keys.Certificate)
	signingTime := s.clock().UTC().Format(SigningTimeLayout)

	var sb strings.Builder
	sb.WriteString(`<xades:SignedProperties Id="` + SignedPropertiesID + `">`)
	sb.WriteString(`<xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + signingTime + `</xades:SigningTime>`)
	sb.WriteString(`<xades:SigningCertificate><xades:Cert><xades:CertDigest>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + certDigest + `</ds:DigestValue></xades:CertDigest>`)
	sb.WriteString(`<xades:IssuerSerial><ds:X509IssuerName>` + escapeXML(issuer) + `</ds:X509IssuerName>`)
	sb.WriteString(`<ds:X509SerialNumber>` + serial + `</ds:X509SerialNumber></xades:IssuerSerial>`)
	sb.WriteString(`</xades:Cert></xades:SigningCertificate>`)
	sb.WriteString(`</xades:SignedSignatureProperties></xades:SignedProperties>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

var _ pkgzatca.Signer = (*Service)(nil)
