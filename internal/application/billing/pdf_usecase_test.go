package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

type fakePDFGenerator struct {
	got *entity.IssuedInvoice
	err error
}

func (g *fakePDFGenerator) GenerateInvoicePDF(_ context.Context, inv *entity.IssuedInvoice) ([]byte, error) {
	g.got = inv
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4"), nil
}

func TestPDFUseCase_DownloadInvoicePDF(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	p, _ := newPipeline(t, billing.PipelineConfig{})
	issued, err := billing.NewIssueInvoiceUseCase(store, p).Issue(ctx, testCompany, testRequest())
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		gen := &fakePDFGenerator{}
		pdf, name, err := billing.NewPDFUseCase(memInvoiceRepo{store}, gen).DownloadInvoicePDF(ctx, testCompany, issued.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), pdf)
		assert.Equal(t, "invoice_"+issued.Number+".pdf", name)
		require.NotNil(t, gen.got)
		assert.Equal(t, issued.QRPayload, gen.got.QRPayload)
	})

	t.Run("no existe", func(t *testing.T) {
		_, _, err := billing.NewPDFUseCase(memInvoiceRepo{store}, &fakePDFGenerator{}).DownloadInvoicePDF(ctx, testCompany, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("otra empresa", func(t *testing.T) {
		_, _, err := billing.NewPDFUseCase(memInvoiceRepo{store}, &fakePDFGenerator{}).DownloadInvoicePDF(ctx, "otra", issued.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("falla el generador", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := billing.NewPDFUseCase(memInvoiceRepo{store}, &fakePDFGenerator{err: boom}).DownloadInvoicePDF(ctx, testCompany, issued.ID)
		assert.ErrorIs(t, err, boom)
	})
}
