package repository

import (
	"context"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

// ChainRepository persiste el estado ICV/PIH por emisor.
type ChainRepository interface {
	// Get devuelve el estado o nil si el emisor aún no emitió facturas.
	Get(ctx context.Context, sellerVAT string) (*entity.ChainState, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, sellerVAT string) (*entity.ChainState, error)
	// Save inserta o actualiza el estado.
	Save(ctx context.Context, state *entity.ChainState) error
}
