// Package cli comandos de línea del emisor ZATCA: llaves, emisión local, verificación y QR.
package cli

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/pkg/config"
	"github.com/jhoicas/zatca-einvoice/pkg/logger"
)

var version = "1.0.0"

type rootOptions struct {
	envFile  string
	profile  string
	qrTags   string
	logLevel string

	log zerolog.Logger
}

// NewRootCommand arma el árbol de comandos. Cada llamada devuelve un árbol nuevo.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "zatca",
		Short: "Emisión y verificación de facturas electrónicas ZATCA",
		Long: `zatca emite facturas UBL 2.1 encadenadas (ICV/PIH), firmadas con ECDSA P-256
y con el QR TLV de ZATCA, sin pasar por la API.

Las variables de entorno (ZATCA_PROFILE, ZATCA_QR_TAGS, JWT_SECRET, ...) se leen
también desde .env o desde el archivo indicado en --env-file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "archivo .env a cargar")
	root.PersistentFlags().StringVar(&opts.profile, "profile", "", "perfil: simplified | standard (por defecto ZATCA_PROFILE o simplified)")
	root.PersistentFlags().StringVar(&opts.qrTags, "qr-tags", "", "tags del QR separados por comas (por defecto según el perfil)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn, error")

	root.AddCommand(
		newKeygenCommand(opts),
		newGenerateCommand(opts),
		newVerifyCommand(opts),
		newQRCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return err
		}
	} else {
		_ = godotenv.Load() // .env es opcional
	}

	if o.profile == "" {
		o.profile = envOr("ZATCA_PROFILE", "simplified")
	}
	o.profile = strings.ToLower(o.profile)
	if o.qrTags == "" {
		o.qrTags = os.Getenv("ZATCA_QR_TAGS")
	}
	if o.logLevel == "" {
		o.logLevel = envOr("LOG_LEVEL", "warn")
	}

	l := logger.New(logger.Config{
		Env:    "development",
		Level:  o.logLevel,
		Output: cmd.ErrOrStderr(),
	})
	o.log = l.Component("cli")
	return nil
}

// zatcaConfig configuración del pipeline a partir de los flags globales.
func (o *rootOptions) zatcaConfig() config.ZATCAConfig {
	return config.ZATCAConfig{
		Profile:           o.profile,
		Currency:          strings.ToUpper(os.Getenv("ZATCA_CURRENCY")),
		TaxCurrency:       strings.ToUpper(os.Getenv("ZATCA_TAX_CURRENCY")),
		RoundingPrecision: 2,
		Curve:             "P-256",
		QRTags:            o.qrTags,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
