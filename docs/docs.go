// Package docs documento Swagger de la API, registrado en swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/invoices": {
            "post": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Emitir factura",
                "parameters": [
                    {
                        "description": "Factura",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.IssueInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.InvoiceResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Listar facturas de un emisor",
                "parameters": [
                    {
                        "type": "string",
                        "description": "VAT del emisor",
                        "name": "seller_vat",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Máximo 100",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Desplazamiento",
                        "name": "offset",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.InvoiceListResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/invoices/verify": {
            "post": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Verificar documento firmado",
                "parameters": [
                    {
                        "description": "xml y public_key opcional (DER Base64)",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.VerifyInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.VerifyInvoiceResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/invoices/{id}": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Detalle de factura",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.InvoiceResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/invoices/{id}/xml": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/xml"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Documento UBL firmado",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/invoices/{id}/pdf": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Representación impresa con QR",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/invoices/{id}/qr": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Payload QR decodificado",
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.QRResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/chains/{vat}": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "chains"
                ],
                "summary": "Último ICV y hash del emisor",
                "parameters": [
                    {
                        "type": "string",
                        "description": "VAT del emisor",
                        "name": "vat",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ChainStatusResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/chains/{vat}/audit": {
            "get": {
                "security": [
                    {
                        "Bearer": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "chains"
                ],
                "summary": "Recorre la cadena completa del emisor",
                "parameters": [
                    {
                        "type": "string",
                        "description": "VAT del emisor",
                        "name": "vat",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ChainAuditResponse"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.AddressRequest": {
            "type": "object",
            "properties": {
                "street_name": {
                    "type": "string"
                },
                "building_number": {
                    "type": "string"
                },
                "district": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "postal_code": {
                    "type": "string"
                },
                "country_code": {
                    "type": "string"
                }
            },
            "required": [
                "street_name",
                "building_number",
                "district",
                "city",
                "postal_code",
                "country_code"
            ]
        },
        "dto.PartyRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "vat_number": {
                    "type": "string"
                },
                "scheme_id": {
                    "type": "string"
                },
                "party_id": {
                    "type": "string"
                },
                "address": {
                    "$ref": "#/definitions/dto.AddressRequest"
                }
            },
            "required": [
                "name",
                "address"
            ]
        },
        "dto.InvoiceLineRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "quantity": {
                    "type": "string",
                    "example": "0.00"
                },
                "unit_code": {
                    "type": "string"
                },
                "tax_category": {
                    "type": "string"
                },
                "tax_percent": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "description",
                "unit_price",
                "quantity"
            ]
        },
        "dto.IssueInvoiceRequest": {
            "type": "object",
            "properties": {
                "number": {
                    "type": "string"
                },
                "uuid": {
                    "type": "string"
                },
                "issued_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "type_code": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "payment_means_code": {
                    "type": "string"
                },
                "delivery_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "seller": {
                    "$ref": "#/definitions/dto.PartyRequest"
                },
                "buyer": {
                    "$ref": "#/definitions/dto.PartyRequest"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceLineRequest"
                    }
                },
                "total_without_vat": {
                    "type": "string",
                    "example": "0.00"
                },
                "vat_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "total_with_vat": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "seller",
                "lines"
            ]
        },
        "dto.InvoiceLineResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "0.00"
                },
                "quantity": {
                    "type": "string",
                    "example": "0.00"
                },
                "unit_code": {
                    "type": "string"
                },
                "tax_category": {
                    "type": "string"
                },
                "tax_percent": {
                    "type": "string",
                    "example": "0.00"
                },
                "line_extension_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "tax_amount": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "dto.InvoiceResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "uuid": {
                    "type": "string"
                },
                "profile": {
                    "type": "string"
                },
                "type_code": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "issued_at": {
                    "type": "string"
                },
                "seller_vat": {
                    "type": "string"
                },
                "seller_name": {
                    "type": "string"
                },
                "buyer_name": {
                    "type": "string"
                },
                "buyer_vat": {
                    "type": "string"
                },
                "icv": {
                    "type": "integer"
                },
                "pih": {
                    "type": "string"
                },
                "hash": {
                    "type": "string"
                },
                "qr_payload": {
                    "type": "string"
                },
                "net_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "tax_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "grand_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceLineResponse"
                    }
                }
            }
        },
        "dto.PageResponse": {
            "type": "object",
            "properties": {
                "limit": {
                    "type": "integer"
                },
                "offset": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "dto.InvoiceListResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceResponse"
                    }
                },
                "page": {
                    "$ref": "#/definitions/dto.PageResponse"
                }
            }
        },
        "dto.QRFieldResponse": {
            "type": "object",
            "properties": {
                "tag": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "value": {
                    "type": "string"
                }
            }
        },
        "dto.QRResponse": {
            "type": "object",
            "properties": {
                "payload": {
                    "type": "string"
                },
                "fields": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.QRFieldResponse"
                    }
                }
            }
        },
        "dto.VerifyInvoiceRequest": {
            "type": "object",
            "properties": {
                "xml": {
                    "type": "string"
                },
                "public_key": {
                    "type": "string"
                }
            },
            "required": [
                "xml"
            ]
        },
        "dto.VerifyInvoiceResponse": {
            "type": "object",
            "properties": {
                "valid": {
                    "type": "boolean"
                },
                "invoice_id": {
                    "type": "string"
                },
                "uuid": {
                    "type": "string"
                },
                "icv": {
                    "type": "integer"
                },
                "pih": {
                    "type": "string"
                },
                "hash": {
                    "type": "string"
                },
                "digest_value": {
                    "type": "string"
                },
                "hash_matches": {
                    "type": "boolean"
                },
                "signature_valid": {
                    "type": "boolean"
                },
                "qr_consistent": {
                    "type": "boolean"
                },
                "problems": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.ChainStatusResponse": {
            "type": "object",
            "properties": {
                "seller_vat": {
                    "type": "string"
                },
                "counter": {
                    "type": "integer"
                },
                "last_hash": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "dto.ChainEntryResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "icv": {
                    "type": "integer"
                },
                "pih": {
                    "type": "string"
                },
                "hash": {
                    "type": "string"
                }
            }
        },
        "dto.ChainAuditResponse": {
            "type": "object",
            "properties": {
                "seller_vat": {
                    "type": "string"
                },
                "invoices": {
                    "type": "integer"
                },
                "valid": {
                    "type": "boolean"
                },
                "error": {
                    "type": "string"
                },
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ChainEntryResponse"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Bearer <token>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "schemes": {{ marshal .Schemes }},
    "host": "{{.Host}}"
}`

// SwaggerInfo metadatos del documento.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ZATCA e-Invoice API",
	Description:      "Emisión de facturas electrónicas ZATCA: forma canónica, cadena ICV/PIH, firma ECDSA P-256, QR TLV y documento UBL 2.1.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
