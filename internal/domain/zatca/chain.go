package zatca

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

// PlaceholderPIH PIH de la primera factura de una cadena: Base64 del hex de SHA-256("0").
const PlaceholderPIH = "NWZlY2ViNjZmZmM4NmYzOGQ5NTI3ODZjNmQ2OTZjNzljMmRiYzIzOWRkNGU5MWI0NjcyOWQ3M2EyN2ZiNTdlOQ=="

// FirstCounter ICV de la primera factura de la cadena.
const FirstCounter int64 = 1

// Hash resumen SHA-256 de la forma canónica de una factura.
type Hash struct {
	Raw    []byte
	Base64 string
}

// Link posición de una factura en la cadena de su emisor.
type Link struct {
	ICV int64
	PIH string
}

// ComputeInvoiceHash calcula SHA-256 sobre los bytes canónicos (nunca sobre el documento final).
func ComputeInvoiceHash(canonical []byte) (Hash, error) {
	if len(canonical) == 0 {
		return Hash{}, &SerializationError{Stage: "hash", Err: errors.New("forma canónica vacía")}
	}
	sum := sha256.Sum256(canonical)
	return Hash{Raw: sum[:], Base64: base64.StdEncoding.EncodeToString(sum[:])}, nil
}

// NextCounter devuelve previous + 1.
func NextCounter(previous int64) (int64, error) {
	if previous < 0 {
		return 0, &ChainError{Field: "icv", Message: fmt.Sprintf("contador anterior negativo (%d)", previous)}
	}
	if previous == math.MaxInt64 {
		return 0, &ChainError{Field: "icv", Message: "contador agotado"}
	}
	return previous + 1, nil
}

// Begin calcula ICV y PIH de la siguiente factura a partir del estado anterior.
// Sin estado anterior (o estado vacío) la factura abre la cadena con ICV 1 y PlaceholderPIH.
func Begin(previous *entity.ChainState) (Link, error) {
	if previous == nil || (previous.Counter == 0 && previous.LastHash == "") {
		return Link{ICV: FirstCounter, PIH: PlaceholderPIH}, nil
	}
	if previous.Counter == 0 {
		return Link{}, &ChainError{Field: "icv", Message: "hay hash anterior pero el contador anterior es 0"}
	}
	if previous.LastHash == "" {
		return Link{}, &ChainError{Field: "pih", Message: fmt.Sprintf("falta el hash de la factura %d", previous.Counter)}
	}
	if _, err := base64.StdEncoding.DecodeString(previous.LastHash); err != nil {
		return Link{}, &ChainError{Field: "pih", Message: "el hash anterior no es Base64 válido"}
	}
	next, err := NextCounter(previous.Counter)
	if err != nil {
		return Link{}, err
	}
	return Link{ICV: next, PIH: previous.LastHash}, nil
}

// Commit devuelve el nuevo estado de la cadena tras emitir la factura del link.
func Commit(sellerVAT string, link Link, h Hash) entity.ChainState {
	return entity.ChainState{SellerVAT: sellerVAT, Counter: link.ICV, LastHash: h.Base64}
}

// VerifyLink comprueba que link continúa exactamente el estado previous.
func VerifyLink(previous *entity.ChainState, link Link) error {
	expected, err := Begin(previous)
	if err != nil {
		return err
	}
	if link.ICV != expected.ICV {
		return &ChainError{Field: "icv", Message: fmt.Sprintf("se esperaba %d, se recibió %d", expected.ICV, link.ICV)}
	}
	if link.PIH != expected.PIH {
		return &ChainError{Field: "pih", Message: "no coincide con el hash de la factura anterior"}
	}
	return nil
}

// ChainEntry factura emitida vista desde la cadena.
type ChainEntry struct {
	ICV  int64
	PIH  string
	Hash string
}

// VerifySequence audita una cadena completa ordenada por ICV: 1, 2, ..., N con cada
// PIH igual al hash de la factura anterior y la primera con PlaceholderPIH.
func VerifySequence(entries []ChainEntry) error {
	var prev *entity.ChainState
	for _, e := range entries {
		if err := VerifyLink(prev, Link{ICV: e.ICV, PIH: e.PIH}); err != nil {
			var ce *ChainError
			if errors.As(err, &ce) {
				ce.Message = fmt.Sprintf("factura %d: %s", e.ICV, ce.Message)
			}
			return err
		}
		if e.Hash == "" {
			return &ChainError{Field: "hash", Message: fmt.Sprintf("factura %d sin hash", e.ICV)}
		}
		prev = &entity.ChainState{Counter: e.ICV, LastHash: e.Hash}
	}
	return nil
}
