package cli

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
)

// errInvalidDocument el documento se leyó pero no pasa la verificación.
var errInvalidDocument = errors.New("documento inválido")

type verifyOptions struct {
	publicKey string
	certPath  string
}

func newVerifyCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify <invoice.xml>",
		Short: "Verifica hash, firma y QR de un documento firmado",
		Long: `Re-deriva la forma canónica del documento y comprueba el hash, la firma
ECDSA y la coherencia del QR. La llave pública se toma de --public-key (DER Base64),
de --cert o, si no se indica ninguna, del tag 8 del QR.

Termina con error si el documento no es válido.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.publicKey, "public-key", "", "llave pública DER en Base64")
	cmd.Flags().StringVar(&opts.certPath, "cert", "", "certificado PEM del emisor")
	cmd.MarkFlagsMutuallyExclusive("public-key", "cert")
	return cmd
}

func runVerify(cmd *cobra.Command, root *rootOptions, opts *verifyOptions, path string) error {
	xml, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer documento: %w", err)
	}
	publicKey := opts.publicKey
	if opts.certPath != "" {
		if publicKey, err = publicKeyFromCert(opts.certPath); err != nil {
			return err
		}
	}

	rep, err := billing.NewVerifyUseCase().Verify(cmd.Context(), dto.VerifyInvoiceRequest{
		XML:       string(xml),
		PublicKey: publicKey,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if !rep.Valid {
		root.log.Warn().Str("file", path).Strs("problems", rep.Problems).Msg("verificación fallida")
		return errInvalidDocument
	}
	return nil
}

func publicKeyFromCert(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("leer certificado: %w", err)
	}
	cert, err := signer.ParseCertificatePEM(data)
	if err != nil {
		return "", err
	}
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return "", errors.New("el certificado no tiene llave ECDSA")
	}
	der, err := signer.EncodePublicKey(pub)
	if err != nil {
		return "", err
	}
	return encodeBase64(der), nil
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
