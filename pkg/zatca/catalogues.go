// Package zatca contiene catálogos y validaciones estructurales de la
// factura electrónica ZATCA (Arabia Saudita, fase 2 / integración).
package zatca

// =============================================================================
// Perfiles de factura
// Simplificada (B2C, reporting) y estándar (B2B, clearance). El perfil decide el
// juego de tags del QR y si el comprador es obligatorio.
// =============================================================================

// Profile perfil de emisión de la factura.
type Profile string

const (
	ProfileSimplified Profile = "simplified"
	ProfileStandard   Profile = "standard"
)

// ValidProfiles perfiles reconocidos.
var ValidProfiles = map[Profile]bool{
	ProfileSimplified: true,
	ProfileStandard:   true,
}

// ParseProfile convierte el valor de configuración en un Profile.
func ParseProfile(s string) (Profile, bool) {
	p := Profile(s)
	return p, ValidProfiles[p]
}

// BuyerRequired indica si el perfil exige bloque de comprador.
func (p Profile) BuyerRequired() bool {
	return p == ProfileStandard
}

// TransactionFlags valor del atributo name de cbc:InvoiceTypeCode (NNPNESB).
func (p Profile) TransactionFlags() string {
	if p == ProfileStandard {
		return TransactionStandard
	}
	return TransactionSimplified
}

// ProfileIDReporting valor de cbc:ProfileID.
const ProfileIDReporting = "reporting:1.0"

// Versión UBL y personalización EN 16931 declaradas en la cabecera.
const (
	UBLVersion      = "2.1"
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
)

// =============================================================================
// Tipo de documento (UNTDID 1001) y banderas de transacción
// =============================================================================

const (
	InvoiceTypeTaxInvoice = "388" // Factura de impuestos
	InvoiceTypeDebitNote  = "383" // Nota débito
	InvoiceTypeCreditNote = "381" // Nota crédito
	InvoiceTypePrepayment = "386" // Factura de anticipo
)

// ValidInvoiceTypeCodes códigos de tipo de documento aceptados.
var ValidInvoiceTypeCodes = map[string]bool{
	InvoiceTypeTaxInvoice: true,
	InvoiceTypeDebitNote:  true,
	InvoiceTypeCreditNote: true,
	InvoiceTypePrepayment: true,
}

const (
	TransactionStandard   = "0100000"
	TransactionSimplified = "0200000"
)

// =============================================================================
// Categorías de impuesto (UNCL 5305) y esquema
// =============================================================================

const (
	TaxCategoryStandard = "S" // Tasa estándar (15 %)
	TaxCategoryZero     = "Z" // Tasa cero
	TaxCategoryExempt   = "E" // Exento
	TaxCategoryOutside  = "O" // Fuera del alcance del IVA

	TaxSchemeVAT = "VAT"
)

// ValidTaxCategories categorías aceptadas en líneas y subtotales.
var ValidTaxCategories = map[string]bool{
	TaxCategoryStandard: true,
	TaxCategoryZero:     true,
	TaxCategoryExempt:   true,
	TaxCategoryOutside:  true,
}

// DefaultTaxPercent tasa estándar del IVA saudí.
const DefaultTaxPercent = 15

// =============================================================================
// Unidades de medida (UN/ECE Rec 20)
// =============================================================================

const (
	UnitPiece    = "PCE"
	UnitEach     = "EA"
	UnitKilogram = "KGM"
	UnitLitre    = "LTR"
	UnitMetre    = "MTR"
	UnitHour     = "HUR"
	UnitDay      = "DAY"
)

// ValidUnitCodes unidades de uso común.
var ValidUnitCodes = map[string]bool{
	UnitPiece: true, UnitEach: true, UnitKilogram: true, UnitLitre: true,
	UnitMetre: true, UnitHour: true, UnitDay: true,
}

// =============================================================================
// Medios de pago (UNTDID 4461)
// =============================================================================

const (
	PaymentMeansInstrumentNotDefined = "1"
	PaymentMeansCash                 = "10"
	PaymentMeansCredit               = "30"
	PaymentMeansBankAccount          = "42"
	PaymentMeansBankCard             = "48"
)

// ValidPaymentMeansCodes medios de pago aceptados.
var ValidPaymentMeansCodes = map[string]bool{
	PaymentMeansInstrumentNotDefined: true,
	PaymentMeansCash:                 true,
	PaymentMeansCredit:               true,
	PaymentMeansBankAccount:          true,
	PaymentMeansBankCard:             true,
}

// =============================================================================
// Esquemas de identificación de la parte (cac:PartyIdentification/@schemeID)
// =============================================================================

const (
	SchemeCommercialRegistration = "CRN"
	SchemeMomraLicense           = "MOM"
	SchemeMLSDLicense            = "MLS"
	SchemeSagiaLicense           = "SAG"
	SchemeNationalID             = "NAT"
	SchemeTaxID                  = "TIN"
	SchemeIqama                  = "IQA"
	SchemePassport               = "PAS"
	SchemeGCCID                  = "GCC"
	SchemeOther                  = "OTH"
)

// ValidPartySchemes esquemas de identificación aceptados.
var ValidPartySchemes = map[string]bool{
	SchemeCommercialRegistration: true, SchemeMomraLicense: true, SchemeMLSDLicense: true,
	SchemeSagiaLicense: true, SchemeNationalID: true, SchemeTaxID: true, SchemeIqama: true,
	SchemePassport: true, SchemeGCCID: true, SchemeOther: true,
}

// Moneda por defecto.
const CurrencySAR = "SAR"
