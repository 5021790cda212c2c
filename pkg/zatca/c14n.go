package zatca

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// Canonicalize aplica Exclusive XML Canonicalization (sin comentarios) al documento. Es la única
// forma de bytes sobre la que se calcula el hash y la firma de la factura.
func Canonicalize(data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("zatca: XML vacío")
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
