package postgres

import (
	"context"
	"fmt"
)

// SchemaDDL tablas de facturas emitidas y estado de cadena por emisor.
const SchemaDDL = `
BEGIN;

CREATE TABLE IF NOT EXISTS chain_states (
  seller_vat  TEXT        PRIMARY KEY,
  counter     BIGINT      NOT NULL CHECK (counter >= 0),
  last_hash   TEXT        NOT NULL DEFAULT '',
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS issued_invoices (
  id           UUID          PRIMARY KEY,
  company_id   TEXT          NOT NULL,
  seller_vat   TEXT          NOT NULL,
  seller_name  TEXT          NOT NULL,
  buyer_name   TEXT          NULL,
  buyer_vat    TEXT          NULL,
  number       TEXT          NOT NULL,
  uuid         UUID          NOT NULL UNIQUE,
  profile      TEXT          NOT NULL,
  type_code    TEXT          NOT NULL,
  currency     CHAR(3)       NOT NULL,
  issued_at    TIMESTAMPTZ   NOT NULL,
  icv          BIGINT        NOT NULL CHECK (icv >= 1),
  pih          TEXT          NOT NULL,
  hash         TEXT          NOT NULL,
  signature    TEXT          NOT NULL,
  qr_payload   TEXT          NOT NULL,
  xml_signed   BYTEA         NOT NULL,
  net_total    NUMERIC(18,2) NOT NULL,
  tax_total    NUMERIC(18,2) NOT NULL,
  grand_total  NUMERIC(18,2) NOT NULL,
  created_at   TIMESTAMPTZ   NOT NULL,

  CONSTRAINT uq_issued_invoices_chain  UNIQUE (seller_vat, icv),
  CONSTRAINT uq_issued_invoices_number UNIQUE (seller_vat, number),
  CONSTRAINT chk_issued_invoices_total CHECK (grand_total = net_total + tax_total)
);

CREATE TABLE IF NOT EXISTS issued_invoice_lines (
  invoice_id            UUID          NOT NULL REFERENCES issued_invoices(id) ON DELETE CASCADE,
  position              INTEGER       NOT NULL,
  line_id               TEXT          NOT NULL,
  description           TEXT          NOT NULL,
  unit_price            NUMERIC(18,6) NOT NULL,
  quantity              NUMERIC(18,6) NOT NULL CHECK (quantity > 0),
  unit_code             TEXT          NOT NULL,
  tax_category          TEXT          NOT NULL,
  tax_percent           NUMERIC(5,2)  NOT NULL,
  line_extension_amount NUMERIC(18,2) NOT NULL,
  tax_amount            NUMERIC(18,2) NOT NULL,
  PRIMARY KEY (invoice_id, position)
);

CREATE INDEX IF NOT EXISTS idx_issued_invoices_company    ON issued_invoices(company_id);
CREATE INDEX IF NOT EXISTS idx_issued_invoices_created_at ON issued_invoices(created_at);

COMMIT;
`

// Migrate aplica SchemaDDL (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, SchemaDDL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
