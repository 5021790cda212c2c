package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
)

// writeError traduce errores de dominio y del pipeline a HTTP.
//
//	ValidationError  → 422 VALIDATION (con el detalle por campo)
//	ChainError       → 409 CHAIN_CONFLICT
//	SerializationError / SigningError → 500
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, zatca.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "factura inválida", Details: validationDetails(err),
		})
	case errors.Is(err, zatca.ErrChain):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CHAIN_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, zatca.ErrSigning):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SIGNING", Message: "firma fallida"})
	case errors.Is(err, zatca.ErrSerialization):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SERIALIZATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// validationDetails un mensaje por campo, recorriendo los errores unidos con errors.Join.
func validationDetails(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*zatca.ValidationError); ok {
			out = append(out, ve.Error())
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// requireCompany corta con 401 si el token no trae empresa.
func requireCompany(c *fiber.Ctx) (string, bool) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		return "", false
	}
	return companyID, true
}
