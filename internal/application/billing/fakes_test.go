package billing_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
	"github.com/jhoicas/zatca-einvoice/pkg/config"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

const testSellerVAT = "310000000000003"

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func testAddress() dto.AddressRequest {
	return dto.AddressRequest{
		StreetName:     "Main Street",
		BuildingNumber: "1234",
		District:       "Al Olaya District",
		City:           "Riyadh",
		PostalCode:     "12345",
		CountryCode:    "SA",
	}
}

// testRequest una línea de 2 x 500.00 al 15 %: total 1150.00, IVA 150.00.
func testRequest() dto.IssueInvoiceRequest {
	issued := fixedNow
	return dto.IssueInvoiceRequest{
		IssuedAt: &issued,
		Seller: dto.PartyRequest{
			Name:      "ABC Company",
			VATNumber: testSellerVAT,
			SchemeID:  pkgzatca.SchemeCommercialRegistration,
			PartyID:   "1234567890",
			Address:   testAddress(),
		},
		Lines: []dto.InvoiceLineRequest{{
			Description: "Product A",
			UnitPrice:   decimal.RequireFromString("500.00"),
			Quantity:    decimal.NewFromInt(2),
		}},
	}
}

func newPipeline(t *testing.T, cfg billing.PipelineConfig) (*billing.Pipeline, *signer.KeyPair) {
	t.Helper()
	kp, err := signer.GenerateKeyPair()
	require.NoError(t, err)
	svc, err := signer.NewService(kp, signer.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	p, err := billing.NewPipeline(cfg, svc, billing.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return p, kp
}

// failingSigner firmador que siempre falla.
type failingSigner struct{}

var errSignerDown = errors.New("hsm no disponible")

func (failingSigner) Sign([]byte) (string, error) { return "", errSignerDown }
func (failingSigner) PublicKey() ([]byte, error) { return nil, errSignerDown }
func (failingSigner) PublicKeySignature() ([]byte, error) { return nil, errSignerDown }
func (failingSigner) SignatureXML(string, string) (string, error) { return "", errSignerDown }

// memStore repos en memoria con transacción por copia: fn trabaja sobre una copia y
// solo se publica si no devuelve error.
type memStore struct {
	mu       sync.Mutex
	chains   map[string]entity.ChainState
	invoices map[string]*entity.IssuedInvoice
}

func newMemStore() *memStore {
	return &memStore{chains: map[string]entity.ChainState{}, invoices: map[string]*entity.IssuedInvoice{}}
}

func (s *memStore) RunChain(ctx context.Context, fn func(repository.ChainRepository, repository.InvoiceRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memStore{chains: map[string]entity.ChainState{}, invoices: map[string]*entity.IssuedInvoice{}}
	for k, v := range s.chains {
		tx.chains[k] = v
	}
	for k, v := range s.invoices {
		tx.invoices[k] = v
	}
	if err := fn(memChainRepo{tx}, memInvoiceRepo{tx}); err != nil {
		return err
	}
	s.chains, s.invoices = tx.chains, tx.invoices
	return nil
}

type memChainRepo struct{ s *memStore }

func (r memChainRepo) Get(_ context.Context, vat string) (*entity.ChainState, error) {
	st, ok := r.s.chains[vat]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r memChainRepo) GetForUpdate(ctx context.Context, vat string) (*entity.ChainState, error) {
	return r.Get(ctx, vat)
}

func (r memChainRepo) Save(_ context.Context, st *entity.ChainState) error {
	r.s.chains[st.SellerVAT] = *st
	return nil
}

type memInvoiceRepo struct{ s *memStore }

func (r memInvoiceRepo) Create(_ context.Context, inv *entity.IssuedInvoice) error {
	r.s.invoices[inv.ID] = inv
	return nil
}

func (r memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.IssuedInvoice, error) {
	return r.s.invoices[id], nil
}

func (r memInvoiceRepo) ListBySeller(_ context.Context, vat string, limit, offset int) ([]*entity.IssuedInvoice, error) {
	list, _ := r.ListChain(context.Background(), vat)
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r memInvoiceRepo) ListChain(_ context.Context, vat string) ([]*entity.IssuedInvoice, error) {
	var out []*entity.IssuedInvoice
	for _, inv := range r.s.invoices {
		if inv.SellerVAT == vat {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ICV < out[j].ICV })
	return out, nil
}

var (
	_ billing.ChainTxRunner        = (*memStore)(nil)
	_ repository.ChainRepository   = memChainRepo{}
	_ repository.InvoiceRepository = memInvoiceRepo{}
)

// dto0Line línea exenta de 10.00.
func dto0Line() dto.InvoiceLineRequest {
	return dto.InvoiceLineRequest{
		Description: "Exempt service",
		UnitPrice:   decimal.RequireFromString("10.00"),
		Quantity:    decimal.NewFromInt(1),
		TaxCategory: pkgzatca.TaxCategoryExempt,
	}
}

func configFor(profile, tags string) config.ZATCAConfig {
	return config.ZATCAConfig{
		Profile:           profile,
		Currency:          "SAR",
		TaxCurrency:       "SAR",
		RoundingPrecision: 2,
		Curve:             "P-256",
		QRTags:            tags,
		KeySource:         config.KeySourceGenerate,
	}
}

func newStore(t *testing.T) *memStore {
	t.Helper()
	return newMemStore()
}
