// Package memory implementa los repositorios en memoria (DB_DRIVER=memory): desarrollo local y tests.
// Cada RunChain trabaja sobre una copia del estado y solo la publica si fn no devuelve error,
// con un mutex global como equivalente del bloqueo de fila.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/domain"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

var (
	_ billing.ChainTxRunner        = (*Store)(nil)
	_ repository.ChainRepository   = (*ChainRepo)(nil)
	_ repository.InvoiceRepository = (*InvoiceRepo)(nil)
)

type state struct {
	chains   map[string]entity.ChainState
	invoices map[string]*entity.IssuedInvoice
}

func (s *state) clone() *state {
	out := &state{
		chains:   make(map[string]entity.ChainState, len(s.chains)),
		invoices: make(map[string]*entity.IssuedInvoice, len(s.invoices)),
	}
	for k, v := range s.chains {
		out.chains[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = v
	}
	return out
}

// Store estado compartido.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: &state{chains: map[string]entity.ChainState{}, invoices: map[string]*entity.IssuedInvoice{}}}
}

// RunChain serializa las emisiones: toma el lock de escritura durante todo fn.
func (s *Store) RunChain(ctx context.Context, fn func(repository.ChainRepository, repository.InvoiceRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(&ChainRepo{st: tx}, &InvoiceRepo{st: tx}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Chains repo de lectura fuera de transacción.
func (s *Store) Chains() *ChainRepo { return &ChainRepo{store: s} }

// Invoices repo de lectura fuera de transacción.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{store: s} }

// view ejecuta fn con el estado publicado bajo lock de lectura (st == nil) o sobre la tx.
func view[T any](store *Store, tx *state, fn func(*state) T) T {
	if tx != nil {
		return fn(tx)
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	return fn(store.st)
}

// ChainRepo estado de cadenas en memoria.
type ChainRepo struct {
	store *Store
	st    *state
}

// Get devuelve una copia del estado o nil.
func (r *ChainRepo) Get(_ context.Context, sellerVAT string) (*entity.ChainState, error) {
	return view(r.store, r.st, func(s *state) *entity.ChainState {
		cs, ok := s.chains[sellerVAT]
		if !ok {
			return nil
		}
		return &cs
	}), nil
}

// GetForUpdate igual que Get: el lock ya lo tiene RunChain.
func (r *ChainRepo) GetForUpdate(ctx context.Context, sellerVAT string) (*entity.ChainState, error) {
	return r.Get(ctx, sellerVAT)
}

// Save solo es válido dentro de RunChain.
func (r *ChainRepo) Save(_ context.Context, cs *entity.ChainState) error {
	if r.st == nil {
		return domain.ErrConflict
	}
	r.st.chains[cs.SellerVAT] = *cs
	return nil
}

// InvoiceRepo facturas emitidas en memoria.
type InvoiceRepo struct {
	store *Store
	st    *state
}

// Create solo es válido dentro de RunChain. Número e ICV son únicos por emisor.
func (r *InvoiceRepo) Create(_ context.Context, inv *entity.IssuedInvoice) error {
	if r.st == nil {
		return domain.ErrConflict
	}
	for _, other := range r.st.invoices {
		if other.SellerVAT == inv.SellerVAT && (other.Number == inv.Number || other.ICV == inv.ICV) {
			return domain.ErrDuplicate
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	cp := *inv
	cp.Lines = append([]entity.LineItem(nil), inv.Lines...)
	r.st.invoices[inv.ID] = &cp
	return nil
}

// GetByID nil si no existe.
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.IssuedInvoice, error) {
	return view(r.store, r.st, func(s *state) *entity.IssuedInvoice { return s.invoices[id] }), nil
}

// ListBySeller más recientes primero.
func (r *InvoiceRepo) ListBySeller(ctx context.Context, sellerVAT string, limit, offset int) ([]*entity.IssuedInvoice, error) {
	list, _ := r.ListChain(ctx, sellerVAT)
	sort.Slice(list, func(i, j int) bool { return list[i].ICV > list[j].ICV })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ListChain en orden de ICV.
func (r *InvoiceRepo) ListChain(_ context.Context, sellerVAT string) ([]*entity.IssuedInvoice, error) {
	return view(r.store, r.st, func(s *state) []*entity.IssuedInvoice {
		var out []*entity.IssuedInvoice
		for _, inv := range s.invoices {
			if inv.SellerVAT == sellerVAT {
				out = append(out, inv)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ICV < out[j].ICV })
		return out
	}), nil
}
