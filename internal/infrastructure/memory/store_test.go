package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/memory"
)

const vat = "310000000000003"

func TestStore_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	err := s.RunChain(ctx, func(c repository.ChainRepository, i repository.InvoiceRepository) error {
		require.NoError(t, i.Create(ctx, &entity.IssuedInvoice{SellerVAT: vat, Number: "1", ICV: 1}))
		return c.Save(ctx, &entity.ChainState{SellerVAT: vat, Counter: 1, LastHash: "h1"})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.RunChain(ctx, func(c repository.ChainRepository, i repository.InvoiceRepository) error {
		require.NoError(t, i.Create(ctx, &entity.IssuedInvoice{SellerVAT: vat, Number: "2", ICV: 2}))
		require.NoError(t, c.Save(ctx, &entity.ChainState{SellerVAT: vat, Counter: 2, LastHash: "h2"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := s.Chains().Get(ctx, vat)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Counter)
	list, err := s.Invoices().ListChain(ctx, vat)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	err := s.RunChain(ctx, func(_ repository.ChainRepository, i repository.InvoiceRepository) error {
		require.NoError(t, i.Create(ctx, &entity.IssuedInvoice{SellerVAT: vat, Number: "1", ICV: 1}))
		return i.Create(ctx, &entity.IssuedInvoice{SellerVAT: vat, Number: "1", ICV: 2})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_WritesOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	assert.ErrorIs(t, s.Chains().Save(ctx, &entity.ChainState{SellerVAT: vat}), domain.ErrConflict)
	assert.ErrorIs(t, s.Invoices().Create(ctx, &entity.IssuedInvoice{}), domain.ErrConflict)
}

func TestInvoiceRepo_ListBySeller(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.RunChain(ctx, func(_ repository.ChainRepository, i repository.InvoiceRepository) error {
		for n := int64(1); n <= 3; n++ {
			if err := i.Create(ctx, &entity.IssuedInvoice{SellerVAT: vat, Number: string(rune('0' + n)), ICV: n}); err != nil {
				return err
			}
		}
		return nil
	}))
	page, err := s.Invoices().ListBySeller(ctx, vat, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ICV)

	page, err = s.Invoices().ListBySeller(ctx, vat, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ICV)

	missing, err := s.Invoices().GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
