// Constantes XMLDSig / XAdES del sello criptográfico ZATCA.

package signer

// Namespaces.
const (
	NamespaceDS     = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceDSig11 = "http://www.w3.org/2009/xmldsig11#"
	NamespaceXAdES  = "http://uri.etsi.org/01903/v1.3.2#"
)

// Algoritmos.
const (
	AlgExcC14N     = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgECDSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256"
	AlgSHA256      = "http://www.w3.org/2001/04/xmlenc#sha256"
	AlgXPath       = "http://www.w3.org/TR/1999/REC-xpath-19991116"
	TypeSignedProp = "http://uri.etsi.org/01903/v1.3.2#SignedProperties"
)

// Transformaciones XPath: la referencia excluye las extensiones, el bloque cac:Signature
// y la referencia del QR, que dependen de la propia firma.
var ReferenceXPaths = []string{
	"not(//ancestor-or-self::ext:UBLExtensions)",
	"not(//ancestor-or-self::cac:Signature)",
	"not(//ancestor-or-self::cac:AdditionalDocumentReference[cbc:ID='QR'])",
}

// Identificadores de la firma dentro del documento.
const (
	SignatureID           = "signature"
	ReferenceID           = "invoiceSignedData"
	SignedPropertiesID    = "xadesSignedProperties"
	CurveP256OID          = "urn:oid:1.2.840.10045.3.1.7"
	SigningTimeLayout     = "2006-01-02T15:04:05"
	CurveP256             = "P-256"
	DefaultCertCommonName = "EGS1-886431145"
)
