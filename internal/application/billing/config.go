package billing

import (
	"fmt"

	"github.com/jhoicas/zatca-einvoice/internal/domain/zatca"
	"github.com/jhoicas/zatca-einvoice/pkg/config"
	pkgzatca "github.com/jhoicas/zatca-einvoice/pkg/zatca"
)

// PipelineConfig opciones reconocidas por el pipeline.
type PipelineConfig struct {
	Profile     pkgzatca.Profile
	Currency    string
	TaxCurrency string
	Precision   int32
	// QRTags juego de tags activo; vacío = el del perfil.
	QRTags zatca.TagSet
}

// NewPipelineConfig traduce la configuración de la aplicación.
func NewPipelineConfig(c config.ZATCAConfig) (PipelineConfig, error) {
	profile, ok := pkgzatca.ParseProfile(c.Profile)
	if !ok {
		return PipelineConfig{}, fmt.Errorf("billing: perfil %q no soportado", c.Profile)
	}
	cfg := PipelineConfig{
		Profile:     profile,
		Currency:    c.Currency,
		TaxCurrency: c.TaxCurrency,
		Precision:   int32(c.RoundingPrecision),
	}
	if c.QRTags != "" {
		tags, err := zatca.ParseTagSet(c.QRTags)
		if err != nil {
			return PipelineConfig{}, err
		}
		cfg.QRTags = tags
	}
	return cfg.withDefaults(), nil
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.Profile == "" {
		c.Profile = pkgzatca.ProfileSimplified
	}
	if c.Currency == "" {
		c.Currency = pkgzatca.CurrencySAR
	}
	if c.TaxCurrency == "" {
		c.TaxCurrency = c.Currency
	}
	if c.Precision <= 0 {
		c.Precision = zatca.DefaultPrecision
	}
	if len(c.QRTags) == 0 {
		c.QRTags = zatca.TagSetForProfile(c.Profile)
	}
	return c
}
