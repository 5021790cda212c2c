package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, seller_vat, seller_name, buyer_name, buyer_vat, number, uuid, profile, type_code,
	currency, issued_at, icv, pih, hash, signature, qr_payload, xml_signed,
	net_total, tax_total, grand_total, created_at`

// Create persiste la cabecera y las líneas. El documento firmado no se actualiza nunca.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.IssuedInvoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `INSERT INTO issued_invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.SellerVAT, inv.SellerName, nullIfEmpty(inv.BuyerName), nullIfEmpty(inv.BuyerVAT),
		inv.Number, inv.UUID, inv.Profile, inv.TypeCode,
		inv.Currency, inv.IssuedAt, inv.ICV, inv.PIH, inv.Hash, inv.Signature, inv.QRPayload, inv.XML,
		inv.NetTotal, inv.TaxTotal, inv.GrandTotal, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s ya existe para %s", domain.ErrDuplicate, inv.Number, inv.SellerVAT)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	const lineQuery = `
		INSERT INTO issued_invoice_lines (invoice_id, position, line_id, description, unit_price, quantity,
			unit_code, tax_category, tax_percent, line_extension_amount, tax_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i, l := range inv.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			inv.ID, i, l.ID, l.Description, l.UnitPrice, l.Quantity,
			l.UnitCode, l.TaxCategory, l.TaxPercent, l.LineExtensionAmount, l.TaxAmount,
		); err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una factura completa por ID; nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.IssuedInvoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + invoiceColumns + ` FROM issued_invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Lines, err = r.lines(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListBySeller lista cabeceras del emisor, más recientes primero.
func (r *InvoiceRepo) ListBySeller(ctx context.Context, sellerVAT string, limit, offset int) ([]*entity.IssuedInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM issued_invoices
		WHERE seller_vat = $1 ORDER BY icv DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, sellerVAT, limit, offset)
}

// ListChain lista todas las cabeceras del emisor en orden de ICV.
func (r *InvoiceRepo) ListChain(ctx context.Context, sellerVAT string) ([]*entity.IssuedInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM issued_invoices WHERE seller_vat = $1 ORDER BY icv ASC`
	return r.list(ctx, query, sellerVAT)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.IssuedInvoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.IssuedInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) lines(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	const query = `
		SELECT line_id, description, unit_price, quantity, unit_code, tax_category, tax_percent,
		       line_extension_amount, tax_amount
		FROM issued_invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.Description, &l.UnitPrice, &l.Quantity, &l.UnitCode, &l.TaxCategory,
			&l.TaxPercent, &l.LineExtensionAmount, &l.TaxAmount); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.IssuedInvoice, error) {
	var inv entity.IssuedInvoice
	var buyerName, buyerVAT *string
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.SellerVAT, &inv.SellerName, &buyerName, &buyerVAT,
		&inv.Number, &inv.UUID, &inv.Profile, &inv.TypeCode,
		&inv.Currency, &inv.IssuedAt, &inv.ICV, &inv.PIH, &inv.Hash, &inv.Signature, &inv.QRPayload, &inv.XML,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.BuyerName = derefStr(buyerName)
	inv.BuyerVAT = derefStr(buyerVAT)
	return &inv, nil
}
