package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
)

func newQRCommand(_ *rootOptions) *cobra.Command {
	qr := &cobra.Command{
		Use:   "qr",
		Short: "Utilidades del QR TLV",
	}

	var asJSON bool
	decode := &cobra.Command{
		Use:   "decode <payload>",
		Short: "Decodifica un payload QR (Base64 de TLV)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := billing.DecodeQRFields(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			for _, f := range resp.Fields {
				fmt.Fprintf(out, "%d %s: %s\n", f.Tag, f.Name, f.Value)
			}
			return nil
		},
	}
	decode.Flags().BoolVar(&asJSON, "json", false, "salida en JSON")

	qr.AddCommand(decode)
	return qr
}
