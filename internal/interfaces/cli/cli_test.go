package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	"github.com/jhoicas/zatca-einvoice/internal/interfaces/cli"
	"github.com/jhoicas/zatca-einvoice/pkg/jwt"
)

const invoiceJSON = `{
  "issued_at": "2024-01-15T10:30:00Z",
  "seller": {
    "name": "ABC Company",
    "vat_number": "310000000000003",
    "scheme_id": "CRN",
    "party_id": "1234567890",
    "address": {
      "street_name": "King Fahd Road",
      "building_number": "1234",
      "district": "Al Olaya",
      "city": "Riyadh",
      "postal_code": "12345",
      "country_code": "SA"
    }
  },
  "lines": [
    {"description": "Product A", "unit_price": "500.00", "quantity": "2"}
  ]
}`

type summary struct {
	InvoiceID string `json:"invoice_id"`
	ICV       int64  `json:"icv"`
	PIH       string `json:"pih"`
	Hash      string `json:"hash"`
	QRPayload string `json:"qr_payload"`
	PublicKey string `json:"public_key"`
}

type verifyReport struct {
	Valid          bool     `json:"valid"`
	HashMatches    bool     `json:"hash_matches"`
	SignatureValid bool     `json:"signature_valid"`
	Problems       []string `json:"problems"`
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func generate(t *testing.T, args ...string) summary {
	t.Helper()
	out, err := execute(t, append([]string{"generate", "--profile", "simplified"}, args...)...)
	require.NoError(t, err)
	var s summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s
}

func TestKeygenGenerateVerify(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "egs-key.pem")
	certPath := filepath.Join(dir, "egs-cert.pem")
	statePath := filepath.Join(dir, "chain.json")
	cfgPath := writeFile(t, dir, "invoice.json", invoiceJSON)

	out, err := execute(t, "keygen", "--key-out", keyPath, "--cert-out", certPath, "--vat", "310000000000003")
	require.NoError(t, err)
	assert.Contains(t, out, "public_key: ")
	assert.FileExists(t, keyPath)
	assert.FileExists(t, certPath)

	first := generate(t, "--config", cfgPath, "--output", filepath.Join(dir, "inv1.xml"),
		"--key", keyPath, "--cert", certPath, "--state-file", statePath)
	assert.Equal(t, int64(1), first.ICV)
	assert.Equal(t, zatca.PlaceholderPIH, first.PIH)
	assert.Equal(t, "INV-20240115-001", first.InvoiceID)

	second := generate(t, "--config", cfgPath, "--output", filepath.Join(dir, "inv2.xml"),
		"--key", keyPath, "--cert", certPath, "--state-file", statePath)
	assert.Equal(t, int64(2), second.ICV)
	assert.Equal(t, first.Hash, second.PIH)

	var state struct {
		SellerVAT string `json:"seller_vat"`
		Counter   int64  `json:"counter"`
		LastHash  string `json:"last_hash"`
	}
	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, "310000000000003", state.SellerVAT)
	assert.Equal(t, int64(2), state.Counter)
	assert.Equal(t, second.Hash, state.LastHash)

	t.Run("verify with cert", func(t *testing.T) {
		out, err := execute(t, "verify", filepath.Join(dir, "inv2.xml"), "--cert", certPath)
		require.NoError(t, err)
		var rep verifyReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.True(t, rep.Valid, rep.Problems)
	})

	t.Run("verify with public key from qr", func(t *testing.T) {
		_, err := execute(t, "verify", filepath.Join(dir, "inv1.xml"))
		require.NoError(t, err)
	})

	t.Run("verify with explicit public key", func(t *testing.T) {
		_, err := execute(t, "verify", filepath.Join(dir, "inv1.xml"), "--public-key", first.PublicKey)
		require.NoError(t, err)
	})

	t.Run("tampered document", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "inv1.xml"))
		require.NoError(t, err)
		tampered := strings.Replace(string(data), ">1150.00<", ">1151.00<", 1)
		require.NotEqual(t, string(data), tampered)
		path := writeFile(t, dir, "tampered.xml", tampered)

		out, err := execute(t, "verify", path)
		require.Error(t, err)
		var rep verifyReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.False(t, rep.Valid)
		assert.False(t, rep.HashMatches)
	})

	t.Run("qr decode", func(t *testing.T) {
		out, err := execute(t, "qr", "decode", first.QRPayload)
		require.NoError(t, err)
		assert.Contains(t, out, "1 ")
		assert.Contains(t, out, "ABC Company")
		assert.Contains(t, out, "310000000000003")
		assert.Contains(t, out, "1150.00")
		assert.Contains(t, out, first.Hash)
	})
}

func TestGenerate_PreviousFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "invoice.json", invoiceJSON)

	first := generate(t, "--config", cfgPath, "--output", filepath.Join(dir, "a.xml"))

	next := generate(t, "--config", cfgPath, "--output", filepath.Join(dir, "b.xml"),
		"--previous-counter", "41", "--previous-hash", first.Hash)
	assert.Equal(t, int64(42), next.ICV)
	assert.Equal(t, first.Hash, next.PIH)
	assert.Equal(t, "INV-20240115-042", next.InvoiceID)

	_, err := execute(t, "generate", "--config", cfgPath, "--output", filepath.Join(dir, "c.xml"),
		"--previous-hash", first.Hash)
	assert.ErrorIs(t, err, zatca.ErrChain)
	assert.NoFileExists(t, filepath.Join(dir, "c.xml"))
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "chain.json")

	t.Run("invalid invoice leaves state untouched", func(t *testing.T) {
		bad := strings.Replace(invoiceJSON, `"postal_code": "12345"`, `"postal_code": ""`, 1)
		cfgPath := writeFile(t, dir, "bad.json", bad)
		out := filepath.Join(dir, "bad.xml")

		_, err := execute(t, "generate", "--config", cfgPath, "--output", out, "--state-file", statePath)
		assert.ErrorIs(t, err, zatca.ErrValidation)
		assert.NoFileExists(t, out)
		assert.NoFileExists(t, statePath)
	})

	t.Run("standard profile requires buyer", func(t *testing.T) {
		cfgPath := writeFile(t, dir, "invoice.json", invoiceJSON)
		_, err := execute(t, "generate", "--profile", "standard", "--config", cfgPath, "--output", filepath.Join(dir, "std.xml"))
		assert.ErrorIs(t, err, zatca.ErrValidation)
	})

	t.Run("state of another seller", func(t *testing.T) {
		cfgPath := writeFile(t, dir, "invoice.json", invoiceJSON)
		other := writeFile(t, dir, "other.json", `{"seller_vat":"399999999900003","counter":3,"last_hash":"`+zatca.PlaceholderPIH+`"}`)
		_, err := execute(t, "generate", "--config", cfgPath, "--output", filepath.Join(dir, "x.xml"), "--state-file", other)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "399999999900003")
	})

	t.Run("missing config flag", func(t *testing.T) {
		_, err := execute(t, "generate", "--output", filepath.Join(dir, "y.xml"))
		assert.Error(t, err)
	})

	t.Run("unknown profile", func(t *testing.T) {
		cfgPath := writeFile(t, dir, "invoice.json", invoiceJSON)
		_, err := execute(t, "generate", "--profile", "b2g", "--config", cfgPath, "--output", filepath.Join(dir, "z.xml"))
		assert.Error(t, err)
	})
}

func TestQRDecode_Invalid(t *testing.T) {
	_, err := execute(t, "qr", "decode", "%%%")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	out, err := execute(t, "token", "--secret", "s3cret", "--company", "acme", "--user", "ops", "--role", jwt.RoleAuditor)
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse("s3cret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", userID)
	assert.Equal(t, "acme", companyID)
	assert.Equal(t, jwt.RoleAuditor, role)

	_, err = execute(t, "token", "--secret", "s3cret", "--company", "acme", "--role", "root")
	assert.Error(t, err)
}
