package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
)

// ChainHandler estado y auditoría de cadenas, y verificación de documentos.
type ChainHandler struct {
	chain  *billing.ChainUseCase
	verify *billing.VerifyUseCase
}

// NewChainHandler construye el handler.
func NewChainHandler(chain *billing.ChainUseCase, verify *billing.VerifyUseCase) *ChainHandler {
	return &ChainHandler{chain: chain, verify: verify}
}

// Status godoc
// @Summary      Último ICV y hash del emisor
// @Tags         chains
// @Security     Bearer
// @Produce      json
// @Param        vat  path      string  true  "VAT del emisor"
// @Success      200  {object}  dto.ChainStatusResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/chains/{vat} [get]
func (h *ChainHandler) Status(c *fiber.Ctx) error {
	st, err := h.chain.Status(c.UserContext(), c.Params("vat"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(st)
}

// Audit godoc
// @Summary      Recorre la cadena completa del emisor
// @Tags         chains
// @Security     Bearer
// @Produce      json
// @Param        vat  path      string  true  "VAT del emisor"
// @Success      200  {object}  dto.ChainAuditResponse
// @Router       /api/chains/{vat}/audit [get]
func (h *ChainHandler) Audit(c *fiber.Ctx) error {
	audit, err := h.chain.Audit(c.UserContext(), c.Params("vat"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(audit)
}

// Verify godoc
// @Summary      Verificar documento firmado
// @Description  Re-deriva la forma canónica, compara el DigestValue y valida firma y QR.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.VerifyInvoiceRequest  true  "xml y public_key opcional (DER Base64)"
// @Success      200   {object}  dto.VerifyInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/verify [post]
func (h *ChainHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.verify.Verify(c.UserContext(), in)
	if err != nil {
		if isUnreadableDocument(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DOCUMENT", Message: err.Error()})
		}
		return writeError(c, err)
	}
	return c.JSON(out)
}
