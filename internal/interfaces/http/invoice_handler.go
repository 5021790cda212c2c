package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
)

// InvoiceHandler emisión y consulta de facturas (protegido).
type InvoiceHandler struct {
	issue *billing.IssueInvoiceUseCase
	query *billing.InvoiceQueryUseCase
	pdf   *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(issue *billing.IssueInvoiceUseCase, query *billing.InvoiceQueryUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{issue: issue, query: query, pdf: pdf}
}

// Create godoc
// @Summary      Emitir factura
// @Description  Valida, canonicaliza, encadena (ICV/PIH), firma y arma el documento UBL con su QR.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.IssueInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.issue.Issue(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List godoc
// @Summary      Listar facturas de un emisor
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        seller_vat  query     string  true   "VAT del emisor"
// @Param        limit       query     int     false  "Máximo 100"
// @Param        offset      query     int     false  "Desplazamiento"
// @Success      200         {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	sellerVAT := c.Query("seller_vat")
	if sellerVAT == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "seller_vat requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	list, err := h.query.ListBySeller(c.UserContext(), companyID, sellerVAT, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	invoice, err := h.query.GetInvoice(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// GetXML godoc
// @Summary      Documento UBL firmado
// @Tags         invoices
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID"
// @Success      200  {file}  file
// @Router       /api/invoices/{id}/xml [get]
func (h *InvoiceHandler) GetXML(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	doc, filename, err := h.query.GetXML(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// GetPDF godoc
// @Summary      Representación impresa con QR
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID"
// @Success      200  {file}  file
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) GetPDF(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	pdf, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// GetQR godoc
// @Summary      Payload QR decodificado
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID"
// @Success      200  {object}  dto.QRResponse
// @Router       /api/invoices/{id}/qr [get]
func (h *InvoiceHandler) GetQR(c *fiber.Ctx) error {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil
	}
	qr, err := h.query.GetQR(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(qr)
}
