package zatca

import "fmt"

// VATNumberLength longitud fija del número de registro de IVA (TRN).
const VATNumberLength = 15

// ValidateVATNumber valida la estructura del número de IVA saudí: 15 dígitos,
// comenzando y terminando en 3 (ej. 310000000000003). No consulta ningún registro.
func ValidateVATNumber(vat string) error {
	if len(vat) != VATNumberLength {
		return fmt.Errorf("zatca: el número de IVA debe tener %d dígitos, se recibieron %d", VATNumberLength, len(vat))
	}
	for i := 0; i < len(vat); i++ {
		if vat[i] < '0' || vat[i] > '9' {
			return fmt.Errorf("zatca: el número de IVA solo admite dígitos (posición %d)", i+1)
		}
	}
	if vat[0] != '3' || vat[len(vat)-1] != '3' {
		return fmt.Errorf("zatca: el número de IVA debe comenzar y terminar en 3")
	}
	return nil
}

// IsGroupVATNumber indica si el TRN corresponde a un grupo de IVA (dígito 11 = 1).
func IsGroupVATNumber(vat string) bool {
	return len(vat) == VATNumberLength && vat[10] == '1'
}
