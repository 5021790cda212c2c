package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
)

// stateFile estado de la cadena persistido entre ejecuciones de generate.
type stateFile struct {
	SellerVAT string    `json:"seller_vat"`
	Counter   int64     `json:"counter"`
	LastHash  string    `json:"last_hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// readState lee el estado; un archivo inexistente equivale a cadena nueva (nil).
func readState(path string) (*entity.ChainState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer estado: %w", err)
	}
	var s stateFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("estado %s: %w", path, err)
	}
	return &entity.ChainState{
		SellerVAT: s.SellerVAT,
		Counter:   s.Counter,
		LastHash:  s.LastHash,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

// writeState escribe el estado en un temporal y lo renombra, para no dejar un archivo a medias.
func writeState(path string, st entity.ChainState) error {
	data, err := json.MarshalIndent(stateFile{
		SellerVAT: st.SellerVAT,
		Counter:   st.Counter,
		LastHash:  st.LastHash,
		UpdatedAt: st.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("escribir estado: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("escribir estado: %w", err)
	}
	return nil
}
