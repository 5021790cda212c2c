package zatca_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	infrazatca "github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca"
)

func TestVerify_ValidDocument(t *testing.T) {
	svc, kp := newService(t, false)
	inv := buildChainedInvoice()
	out := issue(t, inv, svc)

	rep, err := infrazatca.Verify(out, kp.Public())
	require.NoError(t, err)
	assert.True(t, rep.Valid(), "problemas: %v", rep.Problems)
	assert.Equal(t, inv.Hash, rep.Hash)
	assert.Equal(t, int64(1), rep.ICV)
	assert.Equal(t, zatca.PlaceholderPIH, rep.PIH)
	assert.Equal(t, "INV-0001", rep.InvoiceID)
}

func TestVerify_KeyFromQR(t *testing.T) {
	svc, _ := newService(t, false)
	out := issue(t, buildChainedInvoice(), svc)

	rep, err := infrazatca.Verify(out, nil)
	require.NoError(t, err)
	assert.True(t, rep.Valid(), "problemas: %v", rep.Problems)
}

func TestVerify_KeyFromCertificate(t *testing.T) {
	svc, _ := newService(t, true)
	out := issue(t, buildChainedInvoice(), svc)

	rep, err := infrazatca.Verify(out, nil)
	require.NoError(t, err)
	assert.True(t, rep.Valid(), "problemas: %v", rep.Problems)
}

func TestVerify_TamperedAmount(t *testing.T) {
	svc, kp := newService(t, false)
	out := issue(t, buildChainedInvoice(), svc)

	tampered := bytes.Replace(out, []byte(">500.00<"), []byte(">501.00<"), 1)
	require.NotEqual(t, out, tampered)

	rep, err := infrazatca.Verify(tampered, kp.Public())
	require.NoError(t, err)
	assert.False(t, rep.Valid())
	assert.False(t, rep.HashMatches)
	assert.False(t, rep.SignatureValid)
}

func TestVerify_OtherKey(t *testing.T) {
	svc, _ := newService(t, false)
	_, other := newService(t, false)
	out := issue(t, buildChainedInvoice(), svc)

	rep, err := infrazatca.Verify(out, other.Public())
	require.NoError(t, err)
	assert.True(t, rep.HashMatches)
	assert.False(t, rep.SignatureValid)
	assert.False(t, rep.Valid())
}

func TestVerify_NotXML(t *testing.T) {
	_, err := infrazatca.Verify([]byte("no es xml <"), nil)
	assert.ErrorIs(t, err, zatca.ErrSerialization)
}

func TestVerify_ChainedDocuments(t *testing.T) {
	svc, kp := newService(t, false)
	first := buildChainedInvoice()
	issue(t, first, svc)
	state := zatca.Commit(testSellerVAT, zatca.Link{ICV: first.ICV, PIH: first.PIH}, zatca.Hash{Base64: first.Hash})

	link, err := zatca.Begin(&state)
	require.NoError(t, err)
	second := buildChainedInvoice()
	second.ID = "INV-0002"
	second.UUID = "8d3e5f0a-7c1b-4b8e-9a55-0f2c3d4e5f60"
	second.ICV, second.PIH = link.ICV, link.PIH
	out := issue(t, second, svc)

	rep, err := infrazatca.Verify(out, kp.Public())
	require.NoError(t, err)
	assert.True(t, rep.Valid(), "problemas: %v", rep.Problems)
	assert.Equal(t, int64(2), rep.ICV)
	assert.Equal(t, first.Hash, rep.PIH)
}
