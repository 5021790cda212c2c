package signer

import (
	"fmt"
	"strings"
	"time"
)

// Fuentes de llave.
const (
	SourceGenerate = "generate"
	SourceFile     = "file"
)

// LoadOptions origen del par de llaves del dispositivo emisor (EGS).
type LoadOptions struct {
	Source         string // generate | file
	PrivateKeyPath string
	CertPath       string // .pem, .p12 o .pfx
	CertPassword   string
	CommonName     string // CN del certificado autofirmado
	VATNumber      string
	Now            time.Time
}

// LoadKeyPair obtiene el par según la fuente: generate crea un par nuevo con
// certificado autofirmado; file lee PKCS#12 o PEM.
func LoadKeyPair(o LoadOptions) (*KeyPair, error) {
	switch o.Source {
	case "", SourceGenerate:
		kp, err := GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		now := o.Now
		if now.IsZero() {
			now = time.Now()
		}
		if err := SelfSign(kp, o.CommonName, o.VATNumber, now); err != nil {
			return nil, err
		}
		return kp, nil
	case SourceFile:
		lower := strings.ToLower(o.CertPath)
		if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
			return LoadFromP12(o.CertPath, o.CertPassword)
		}
		if o.PrivateKeyPath == "" {
			return nil, fmt.Errorf("llave: falta la ruta de la llave privada")
		}
		return LoadFromPEM(o.PrivateKeyPath, o.CertPath)
	default:
		return nil, fmt.Errorf("llave: fuente %q no soportada", o.Source)
	}
}
