package zatca

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// VerifyReport resultado de verificar un documento ensamblado.
type VerifyReport struct {
	InvoiceID      string
	UUID           string
	ICV            int64
	PIH            string
	Hash           string // recalculado sobre la forma canónica
	DigestValue    string // declarado en ds:SignedInfo
	SignatureValue string
	QRPayload      string
	HashMatches    bool
	SignatureValid bool
	QRConsistent   bool
	Problems       []string
}

// Valid indica que el documento pasó todas las comprobaciones.
func (r *VerifyReport) Valid() bool {
	return r.HashMatches && r.SignatureValid && r.QRConsistent && len(r.Problems) == 0
}

func (r *VerifyReport) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify re-deriva la forma canónica quitando los bloques que dependen de la firma,
// compara el hash con DigestValue y el QR, y verifica la firma. pub es opcional: sin ella
// se usa el certificado del documento o, en su defecto, la llave pública del QR (tag 8).
// Un documento ilegible devuelve error; las discrepancias se reportan en VerifyReport.
func Verify(document []byte, pub *ecdsa.PublicKey) (*VerifyReport, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(document); err != nil {
		return nil, &zatca.SerializationError{Stage: "leer documento", Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "Invoice" {
		return nil, &zatca.SerializationError{Stage: "leer documento", Err: errors.New("la raíz no es Invoice")}
	}

	rep := &VerifyReport{
		InvoiceID: childText(root, "cbc:ID"),
		UUID:      childText(root, "cbc:UUID"),
		PIH:       referenceText(root, RefPIH, "./cac:Attachment/cbc:EmbeddedDocumentBinaryObject"),
		QRPayload: referenceText(root, RefQR, "./cac:Attachment/cbc:EmbeddedDocumentBinaryObject"),
	}
	if icv := referenceText(root, RefICV, "./cbc:UUID"); icv != "" {
		n, err := strconv.ParseInt(icv, 10, 64)
		if err != nil || n < 1 {
			rep.problem("ICV inválido: %q", icv)
		}
		rep.ICV = n
	} else {
		rep.problem("falta la referencia ICV")
	}
	if rep.PIH == "" {
		rep.problem("falta la referencia PIH")
	}

	sig := root.FindElement("./ext:UBLExtensions//ds:Signature")
	if sig == nil {
		rep.problem("falta ds:Signature")
		return rep, nil
	}
	rep.DigestValue = textOf(sig.FindElement("./ds:SignedInfo/ds:Reference[@Id='" + signer.ReferenceID + "']/ds:DigestValue"))
	rep.SignatureValue = textOf(sig.FindElement("./ds:SignatureValue"))

	canonical, err := canonicalFromDocument(doc)
	if err != nil {
		return nil, err
	}
	h, err := zatca.ComputeInvoiceHash(canonical)
	if err != nil {
		return nil, err
	}
	rep.Hash = h.Base64
	rep.HashMatches = rep.DigestValue != "" && rep.DigestValue == rep.Hash
	if !rep.HashMatches {
		rep.problem("el hash recalculado no coincide con DigestValue")
	}

	qrFields, err := zatca.DecodeQR(rep.QRPayload)
	if err != nil || rep.QRPayload == "" {
		rep.problem("QR ilegible")
	}

	key, err := resolvePublicKey(pub, sig, qrFields)
	if err != nil {
		rep.problem("llave pública no disponible: %v", err)
	} else if err := signer.Verify(key, canonical, rep.SignatureValue); err != nil {
		rep.problem("firma inválida: %v", err)
	} else {
		rep.SignatureValid = true
	}

	if qrFields != nil {
		rep.QRConsistent = checkQR(rep, qrFields, key)
	}
	return rep, nil
}

// canonicalFromDocument quita UBLExtensions, la referencia QR y cac:Signature y canonicaliza el resto.
func canonicalFromDocument(doc *etree.Document) ([]byte, error) {
	root := doc.Root().Copy()
	for _, path := range []string{
		"./ext:UBLExtensions",
		"./cac:AdditionalDocumentReference[cbc:ID='" + RefQR + "']",
		"./cac:Signature",
	} {
		for _, el := range root.FindElements(path) {
			root.RemoveChild(el)
		}
	}
	out, err := etree.NewDocumentWithRoot(root).WriteToBytes()
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "re-serializar", Err: err}
	}
	canonical, err := pkgzatca.Canonicalize(out)
	if err != nil {
		return nil, &zatca.SerializationError{Stage: "c14n", Err: err}
	}
	return canonical, nil
}

func resolvePublicKey(pub *ecdsa.PublicKey, sig *etree.Element, qr []zatca.TLVField) (*ecdsa.PublicKey, error) {
	if pub != nil {
		return pub, nil
	}
	if certB64 := textOf(sig.FindElement(".//ds:X509Certificate")); certB64 != "" {
		der, err := base64.StdEncoding.DecodeString(certB64)
		if err != nil {
			return nil, err
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, err
		}
		key, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			return nil, errors.New("el certificado no tiene llave ECDSA")
		}
		return key, nil
	}
	if der, ok := zatca.FieldValue(qr, zatca.TagPublicKey); ok {
		return signer.DecodePublicKey(der)
	}
	return nil, errors.New("sin certificado ni tag 8 en el QR")
}

// checkQR compara los tags 6, 7 y 8 con el hash, la firma y la llave del documento.
func checkQR(rep *VerifyReport, fields []zatca.TLVField, key *ecdsa.PublicKey) bool {
	ok := true
	if v, found := zatca.FieldValue(fields, zatca.TagInvoiceHash); !found || string(v) != rep.Hash {
		rep.problem("QR: el hash (tag 6) no coincide")
		ok = false
	}
	if v, found := zatca.FieldValue(fields, zatca.TagSignature); !found || string(v) != rep.SignatureValue {
		rep.problem("QR: la firma (tag 7) no coincide")
		ok = false
	}
	if v, found := zatca.FieldValue(fields, zatca.TagPublicKey); found && key != nil {
		der, err := signer.EncodePublicKey(key)
		if err != nil || !bytes.Equal(der, v) {
			rep.problem("QR: la llave pública (tag 8) no coincide")
			ok = false
		}
	}
	return ok
}

func childText(root *etree.Element, tag string) string {
	return textOf(root.SelectElement(tag))
}

// referenceText texto de path dentro de AdditionalDocumentReference con cbc:ID = id.
func referenceText(root *etree.Element, id, path string) string {
	ref := root.FindElement("./cac:AdditionalDocumentReference[cbc:ID='" + id + "']")
	if ref == nil {
		return ""
	}
	return textOf(ref.FindElement(path))
}

func textOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
