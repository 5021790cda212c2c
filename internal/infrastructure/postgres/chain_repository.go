package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
)

var _ repository.ChainRepository = (*ChainRepo)(nil)

// ChainRepo estado ICV/PIH por emisor (usable con pool o tx).
type ChainRepo struct {
	q Querier
}

// NewChainRepository construye el adaptador. Pasar pool o tx (Querier).
func NewChainRepository(q Querier) *ChainRepo {
	return &ChainRepo{q: q}
}

// Get devuelve el estado del emisor o nil si aún no emitió facturas.
func (r *ChainRepo) Get(ctx context.Context, sellerVAT string) (*entity.ChainState, error) {
	const query = `SELECT seller_vat, counter, last_hash, updated_at FROM chain_states WHERE seller_vat = $1`
	return r.scan(r.q.QueryRow(ctx, query, sellerVAT))
}

// GetForUpdate bloquea la fila del emisor hasta el fin de la transacción. Si el emisor no tiene
// fila se inserta una vacía primero, así dos primeras facturas concurrentes también se serializan.
// Un estado vacío (contador 0) se devuelve como nil.
func (r *ChainRepo) GetForUpdate(ctx context.Context, sellerVAT string) (*entity.ChainState, error) {
	const insert = `
		INSERT INTO chain_states (seller_vat, counter, last_hash, updated_at)
		VALUES ($1, 0, '', now())
		ON CONFLICT (seller_vat) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, sellerVAT); err != nil {
		return nil, fmt.Errorf("init chain state: %w", err)
	}
	const query = `
		SELECT seller_vat, counter, last_hash, updated_at
		FROM chain_states WHERE seller_vat = $1
		FOR UPDATE`
	st, err := r.scan(r.q.QueryRow(ctx, query, sellerVAT))
	if err != nil || st == nil {
		return st, err
	}
	if st.Counter == 0 && st.LastHash == "" {
		return nil, nil
	}
	return st, nil
}

// Save guarda el nuevo estado del emisor.
func (r *ChainRepo) Save(ctx context.Context, st *entity.ChainState) error {
	const query = `
		INSERT INTO chain_states (seller_vat, counter, last_hash, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (seller_vat) DO UPDATE
		SET counter = EXCLUDED.counter, last_hash = EXCLUDED.last_hash, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, st.SellerVAT, st.Counter, st.LastHash, st.UpdatedAt); err != nil {
		return fmt.Errorf("save chain state: %w", err)
	}
	return nil
}

func (r *ChainRepo) scan(row pgx.Row) (*entity.ChainState, error) {
	var st entity.ChainState
	if err := row.Scan(&st.SellerVAT, &st.Counter, &st.LastHash, &st.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chain state: %w", err)
	}
	return &st, nil
}
