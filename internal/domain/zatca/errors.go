// Package zatca contiene las reglas de dominio de la factura electrónica ZATCA:
// validación, montos, cadena de hashes (ICV/PIH) y payload QR. No hace I/O.
package zatca

import (
	"errors"
	"fmt"
)

// Tipos de error del pipeline. Cada error concreto responde a errors.Is con su centinela.
var (
	ErrValidation    = errors.New("zatca: factura inválida")
	ErrSerialization = errors.New("zatca: serialización canónica fallida")
	ErrSigning       = errors.New("zatca: firma fallida")
	ErrChain         = errors.New("zatca: cadena de facturas inválida")
)

// ValidationError campo obligatorio ausente, mal formado o invariante incumplida.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("zatca: %s: %s (valor %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("zatca: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SerializationError la factura no pudo llevarse a su forma canónica.
type SerializationError struct {
	Stage string
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("zatca: serialización (%s): %v", e.Stage, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }

// SigningError llave ausente o fallo de la primitiva de firma.
type SigningError struct {
	Op  string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("zatca: firma (%s): %v", e.Op, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

func (e *SigningError) Is(target error) bool { return target == ErrSigning }

// ChainError contador no monótono o PIH ausente para una factura que no es la primera.
type ChainError struct {
	Field   string
	Message string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("zatca: cadena: %s: %s", e.Field, e.Message)
}

func (e *ChainError) Is(target error) bool { return target == ErrChain }
