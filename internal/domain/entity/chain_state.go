package entity

import "time"

// ChainState estado de la cadena de facturas de un emisor (una por número de IVA).
// Counter es el ICV de la última factura emitida y LastHash su hash en Base64.
type ChainState struct {
	SellerVAT string
	Counter   int64
	LastHash  string
	UpdatedAt time.Time
}
