package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	"github.com/jhoicas/zatca-einvoice/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IssueInvoice *billing.IssueInvoiceUseCase
	InvoiceQuery *billing.InvoiceQueryUseCase
	InvoicePDF   *billing.PDFUseCase
	Chain        *billing.ChainUseCase
	Verify       *billing.VerifyUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleIssuer, jwt.RoleAuditor)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleIssuer)
	auditors := RequireRole(jwt.RoleAdmin, jwt.RoleAuditor)

	invoiceHandler := NewInvoiceHandler(deps.IssueInvoice, deps.InvoiceQuery, deps.InvoicePDF)
	chainHandler := NewChainHandler(deps.Chain, deps.Verify)

	// Invoices
	invoices := api.Group("/invoices")
	invoices.Post("/", writers, invoiceHandler.Create)
	invoices.Get("/", readers, invoiceHandler.List)
	invoices.Post("/verify", readers, chainHandler.Verify)
	invoices.Get("/:id", readers, invoiceHandler.GetByID)
	invoices.Get("/:id/xml", readers, invoiceHandler.GetXML)
	invoices.Get("/:id/pdf", readers, invoiceHandler.GetPDF)
	invoices.Get("/:id/qr", readers, invoiceHandler.GetQR)

	// Chains
	chains := api.Group("/chains")
	chains.Get("/:vat", readers, chainHandler.Status)
	chains.Get("/:vat/audit", auditors, chainHandler.Audit)
}

func isUnreadableDocument(err error) bool {
	return errors.Is(err, zatca.ErrSerialization)
}
