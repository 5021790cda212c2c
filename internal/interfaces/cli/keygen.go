package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
)

type keygenOptions struct {
	keyOut     string
	certOut    string
	commonName string
	vatNumber  string
}

func newKeygenCommand(root *rootOptions) *cobra.Command {
	opts := &keygenOptions{}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera un par de llaves P-256 y, opcionalmente, un certificado autofirmado",
		Long: `Genera la llave privada del dispositivo emisor (EGS) en PEM SEC1.
Con --cert-out además emite un certificado autofirmado para pruebas (sandbox).

Ejemplos:
  zatca keygen --key-out egs-key.pem
  zatca keygen --key-out egs-key.pem --cert-out egs-cert.pem --vat 310000000000003`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.keyOut, "key-out", "zatca-key.pem", "archivo de salida de la llave privada")
	cmd.Flags().StringVar(&opts.certOut, "cert-out", "", "archivo de salida del certificado autofirmado")
	cmd.Flags().StringVar(&opts.commonName, "cn", "", "CN del certificado")
	cmd.Flags().StringVar(&opts.vatNumber, "vat", "", "número de IVA del emisor (OU del certificado)")
	return cmd
}

func runKeygen(cmd *cobra.Command, root *rootOptions, opts *keygenOptions) error {
	kp, err := signer.GenerateKeyPair()
	if err != nil {
		return err
	}
	keyPEM, err := signer.EncodePrivateKeyPEM(kp.Private)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.keyOut, keyPEM, 0o600); err != nil {
		return fmt.Errorf("escribir llave: %w", err)
	}

	if opts.certOut != "" {
		if err := signer.SelfSign(kp, opts.commonName, opts.vatNumber, time.Now()); err != nil {
			return err
		}
		if err := os.WriteFile(opts.certOut, signer.EncodeCertificatePEM(kp.Certificate), 0o644); err != nil {
			return fmt.Errorf("escribir certificado: %w", err)
		}
	}

	pub, err := signer.EncodePublicKey(kp.Public())
	if err != nil {
		return err
	}
	root.log.Info().Str("key", opts.keyOut).Str("cert", opts.certOut).Msg("par de llaves generado")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key: %s\n", opts.keyOut)
	if opts.certOut != "" {
		fmt.Fprintf(out, "cert: %s\n", opts.certOut)
	}
	fmt.Fprintf(out, "public_key: %s\n", base64.StdEncoding.EncodeToString(pub))
	return nil
}
