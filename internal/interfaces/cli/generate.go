package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/application/dto"
	"github.com/jhoicas/zatca-einvoice/internal/domain/entity"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
)

type generateOptions struct {
	configPath      string
	outputPath      string
	keyPath         string
	certPath        string
	certPassword    string
	previousHash    string
	previousCounter int64
	statePath       string
}

// generateSummary salida de generate (JSON en stdout).
type generateSummary struct {
	InvoiceID string `json:"invoice_id"`
	UUID      string `json:"uuid"`
	ICV       int64  `json:"icv"`
	PIH       string `json:"pih"`
	Hash      string `json:"hash"`
	QRPayload string `json:"qr_payload"`
	Output    string `json:"output"`
	PublicKey string `json:"public_key"`
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emite una factura firmada a partir de un archivo JSON",
		Long: `Lee la factura (mismo formato que POST /api/invoices), la encadena con el estado
anterior, la firma y escribe el documento UBL ensamblado.

El estado anterior se toma de --state-file (que se actualiza al terminar) o de
--previous-counter y --previous-hash. Sin ninguno, la factura abre la cadena.
Sin --key ni --cert se usa una llave efímera con certificado autofirmado.

Ejemplos:
  zatca generate --config invoice.json --output invoice.xml --key egs-key.pem --state-file chain.json
  zatca generate --config invoice.json --output invoice.xml --previous-counter 41 --previous-hash <base64>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "factura en JSON")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "archivo XML de salida")
	cmd.Flags().StringVar(&opts.keyPath, "key", "", "llave privada PEM")
	cmd.Flags().StringVar(&opts.certPath, "cert", "", "certificado .pem, .p12 o .pfx")
	cmd.Flags().StringVar(&opts.certPassword, "cert-password", "", "contraseña del .p12")
	cmd.Flags().StringVar(&opts.previousHash, "previous-hash", "", "hash Base64 de la factura anterior")
	cmd.Flags().Int64Var(&opts.previousCounter, "previous-counter", 0, "ICV de la factura anterior")
	cmd.Flags().StringVar(&opts.statePath, "state-file", "", "archivo JSON con el estado de la cadena")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("state-file", "previous-hash")
	cmd.MarkFlagsMutuallyExclusive("state-file", "previous-counter")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	data, err := os.ReadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("leer factura: %w", err)
	}
	var req dto.IssueInvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("factura %s: %w", opts.configPath, err)
	}

	pcfg, err := billing.NewPipelineConfig(root.zatcaConfig())
	if err != nil {
		return err
	}
	keys, err := loadKeys(opts, req.Seller.VATNumber)
	if err != nil {
		return err
	}
	svc, err := signer.NewService(keys)
	if err != nil {
		return err
	}
	pipeline, err := billing.NewPipeline(pcfg, svc, billing.WithLogger(root.log))
	if err != nil {
		return err
	}

	previous, err := previousState(opts, req.Seller.VATNumber)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), billing.IssueInput{
		Invoice:  billing.InvoiceFromRequest(req, pcfg),
		Previous: previous,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.outputPath, res.Document, 0o644); err != nil {
		return fmt.Errorf("escribir documento: %w", err)
	}
	if opts.statePath != "" {
		if err := writeState(opts.statePath, res.State); err != nil {
			return err
		}
	}
	root.log.Info().
		Str("invoice_id", res.Invoice.ID).
		Int64("icv", res.Invoice.ICV).
		Str("output", opts.outputPath).
		Msg("factura emitida")

	pub, err := svc.PublicKey()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(generateSummary{
		InvoiceID: res.Invoice.ID,
		UUID:      res.Invoice.UUID,
		ICV:       res.Invoice.ICV,
		PIH:       res.Invoice.PIH,
		Hash:      res.Hash.Base64,
		QRPayload: res.QRPayload,
		Output:    opts.outputPath,
		PublicKey: encodeBase64(pub),
	})
}

func loadKeys(opts *generateOptions, sellerVAT string) (*signer.KeyPair, error) {
	if opts.keyPath == "" && opts.certPath == "" {
		return signer.LoadKeyPair(signer.LoadOptions{Source: signer.SourceGenerate, VATNumber: sellerVAT})
	}
	return signer.LoadKeyPair(signer.LoadOptions{
		Source:         signer.SourceFile,
		PrivateKeyPath: opts.keyPath,
		CertPath:       opts.certPath,
		CertPassword:   opts.certPassword,
	})
}

func previousState(opts *generateOptions, sellerVAT string) (*entity.ChainState, error) {
	if opts.statePath != "" {
		st, err := readState(opts.statePath)
		if err != nil || st == nil {
			return st, err
		}
		if st.SellerVAT != "" && st.SellerVAT != sellerVAT {
			return nil, fmt.Errorf("el estado %s es del emisor %s, la factura es de %s", opts.statePath, st.SellerVAT, sellerVAT)
		}
		return st, nil
	}
	if opts.previousCounter == 0 && opts.previousHash == "" {
		return nil, nil
	}
	return &entity.ChainState{
		SellerVAT: sellerVAT,
		Counter:   opts.previousCounter,
		LastHash:  opts.previousHash,
	}, nil
}
