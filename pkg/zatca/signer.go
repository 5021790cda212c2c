package zatca

// Signer produce el sello criptográfico de la factura sobre su forma canónica.
type Signer interface {
	// Sign firma SHA-256(canonical) y devuelve la firma DER en Base64.
	Sign(canonical []byte) (string, error)
	// PublicKey devuelve la llave pública en DER (SubjectPublicKeyInfo).
	PublicKey() ([]byte, error)
	// PublicKeySignature devuelve la firma del certificado (o de la llave pública) para el tag 9 del QR.
	PublicKeySignature() ([]byte, error)
	// SignatureXML construye el nodo ds:Signature para el hash y la firma dados.
	SignatureXML(invoiceHash, signatureValue string) (string, error)
}
