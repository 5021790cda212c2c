package entity

// Party emisor o comprador de la factura.
type Party struct {
	Name      string // cac:PartyLegalEntity/cbc:RegistrationName
	VATNumber string // cac:PartyTaxScheme/cbc:CompanyID (15 dígitos)
	SchemeID  string // CRN, NAT, ... (cac:PartyIdentification/cbc:ID@schemeID)
	PartyID   string // Valor de la identificación adicional
	Address   Address
}

// Address dirección nacional. Los seis campos son obligatorios.
type Address struct {
	StreetName     string
	BuildingNumber string
	District       string // cbc:CitySubdivisionName
	City           string
	PostalCode     string
	CountryCode    string // ISO 3166-1 alfa-2
}
