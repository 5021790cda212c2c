package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/zatca-einvoice/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "simplified", cfg.ZATCA.Profile)
	assert.Equal(t, "SAR", cfg.ZATCA.Currency)
	assert.Equal(t, "SAR", cfg.ZATCA.TaxCurrency)
	assert.Equal(t, 2, cfg.ZATCA.RoundingPrecision)
	assert.Equal(t, "P-256", cfg.ZATCA.Curve)
	assert.Equal(t, config.KeySourceGenerate, cfg.ZATCA.KeySource)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ZATCA_PROFILE", "STANDARD")
	t.Setenv("ZATCA_ROUNDING_PRECISION", "3")
	t.Setenv("ZATCA_KEY_SOURCE", "file")
	t.Setenv("ZATCA_PRIVATE_KEY_PATH", "/tmp/key.pem")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "standard", cfg.ZATCA.Profile)
	assert.Equal(t, 3, cfg.ZATCA.RoundingPrecision)
	assert.Equal(t, "/tmp/key.pem", cfg.ZATCA.PrivateKeyPath)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_RejectsUnsupportedCurve(t *testing.T) {
	t.Setenv("ZATCA_CURVE", "P-384")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestZATCAConfig_Validate(t *testing.T) {
	base := config.ZATCAConfig{Profile: "simplified", Curve: "P-256", RoundingPrecision: 2, KeySource: config.KeySourceGenerate}
	require.NoError(t, base.Validate())

	bad := base
	bad.Profile = "b2g"
	assert.Error(t, bad.Validate())

	bad = base
	bad.KeySource = config.KeySourceFile
	assert.Error(t, bad.Validate(), "file sin rutas")

	bad = base
	bad.KeySource = "hsm"
	assert.Error(t, bad.Validate())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "zatca", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/zatca?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_DBDriver(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DBDriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 25, cfg.DB.MaxConns)

	t.Setenv("DB_DRIVER", "Memory")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DBDriverMemory, cfg.DB.Driver)

	t.Setenv("DB_DRIVER", "sqlite")
	_, err = config.Load()
	assert.Error(t, err)
}
