package zatca_test

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
)

// ──────────────────────────────────────────────────────────────────────────────
// El PIH de la primera factura es Base64(hex(SHA-256("0"))). Si alguien cambia la
// constante, toda cadena nueva deja de ser verificable por terceros.
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceholderPIH_Vector(t *testing.T) {
	sum := sha256.Sum256([]byte("0"))
	expected := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(sum[:])))
	assert.Equal(t, expected, zatca.PlaceholderPIH)
}

func TestComputeInvoiceHash_Vector(t *testing.T) {
	h, err := zatca.ComputeInvoiceHash([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=", h.Base64)
	assert.Len(t, h.Raw, 32)
}

func TestComputeInvoiceHash_Vacio(t *testing.T) {
	_, err := zatca.ComputeInvoiceHash(nil)
	assert.ErrorIs(t, err, zatca.ErrSerialization)
}

func TestNextCounter(t *testing.T) {
	n, err := zatca.NextCounter(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = zatca.NextCounter(41)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = zatca.NextCounter(-1)
	assert.ErrorIs(t, err, zatca.ErrChain)

	_, err = zatca.NextCounter(math.MaxInt64)
	assert.ErrorIs(t, err, zatca.ErrChain)
}

func TestBegin_PrimeraFactura(t *testing.T) {
	link, err := zatca.Begin(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ICV)
	assert.Equal(t, zatca.PlaceholderPIH, link.PIH)

	link, err = zatca.Begin(&entity.ChainState{SellerVAT: testSellerVAT})
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ICV)
}

func TestBegin_SinHashAnterior(t *testing.T) {
	_, err := zatca.Begin(&entity.ChainState{Counter: 3})
	assert.ErrorIs(t, err, zatca.ErrChain)

	var ce *zatca.ChainError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pih", ce.Field)
}

func TestBegin_HashSinContador(t *testing.T) {
	_, err := zatca.Begin(&entity.ChainState{LastHash: "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0="})
	assert.ErrorIs(t, err, zatca.ErrChain)
}

// Secuencia de N facturas: contadores 1..N y cada PIH igual al hash anterior.
func TestChain_SecuenciaCompleta(t *testing.T) {
	var state *entity.ChainState
	var entries []zatca.ChainEntry
	for i := 0; i < 5; i++ {
		link, err := zatca.Begin(state)
		require.NoError(t, err)
		h, err := zatca.ComputeInvoiceHash([]byte{byte(i), 'x'})
		require.NoError(t, err)

		next := zatca.Commit(testSellerVAT, link, h)
		state = &next
		entries = append(entries, zatca.ChainEntry{ICV: link.ICV, PIH: link.PIH, Hash: h.Base64})
	}

	for k, e := range entries {
		assert.Equal(t, int64(k+1), e.ICV)
		if k == 0 {
			assert.Equal(t, zatca.PlaceholderPIH, e.PIH)
		} else {
			assert.Equal(t, entries[k-1].Hash, e.PIH)
		}
	}
	require.NoError(t, zatca.VerifySequence(entries))
	assert.Equal(t, int64(5), state.Counter)
}

func TestVerifySequence_DetectaHuecos(t *testing.T) {
	h1, _ := zatca.ComputeInvoiceHash([]byte("1"))
	h2, _ := zatca.ComputeInvoiceHash([]byte("2"))

	gap := []zatca.ChainEntry{
		{ICV: 1, PIH: zatca.PlaceholderPIH, Hash: h1.Base64},
		{ICV: 3, PIH: h1.Base64, Hash: h2.Base64},
	}
	assert.ErrorIs(t, zatca.VerifySequence(gap), zatca.ErrChain)

	wrongPIH := []zatca.ChainEntry{
		{ICV: 1, PIH: zatca.PlaceholderPIH, Hash: h1.Base64},
		{ICV: 2, PIH: h2.Base64, Hash: h2.Base64},
	}
	assert.ErrorIs(t, zatca.VerifySequence(wrongPIH), zatca.ErrChain)
}

func TestVerifyLink_ContadorRepetido(t *testing.T) {
	h, _ := zatca.ComputeInvoiceHash([]byte("x"))
	prev := &entity.ChainState{Counter: 7, LastHash: h.Base64}

	assert.NoError(t, zatca.VerifyLink(prev, zatca.Link{ICV: 8, PIH: h.Base64}))
	assert.ErrorIs(t, zatca.VerifyLink(prev, zatca.Link{ICV: 7, PIH: h.Base64}), zatca.ErrChain)
}
