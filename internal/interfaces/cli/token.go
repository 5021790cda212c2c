package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/zatca-einvoice/pkg/jwt"
)

type tokenOptions struct {
	secret    string
	userID    string
	companyID string
	role      string
	issuer    string
	expMin    int
}

func newTokenCommand(_ *rootOptions) *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Genera un Bearer token para la API",
		Long: `Firma un JWT HS256 con el secreto de la API (JWT_SECRET por defecto).

Ejemplo:
  zatca token --company acme --user ops --role issuer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := opts.secret
			if secret == "" {
				secret = envOr("JWT_SECRET", "")
			}
			switch opts.role {
			case jwt.RoleAdmin, jwt.RoleIssuer, jwt.RoleAuditor:
			default:
				return fmt.Errorf("rol %q no soportado (admin, issuer, auditor)", opts.role)
			}
			issuer := opts.issuer
			if issuer == "" {
				issuer = envOr("JWT_ISSUER", "zatca-einvoice")
			}
			token, err := jwt.Generate(secret, opts.userID, opts.companyID, opts.role, issuer, opts.expMin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.secret, "secret", "", "secreto HS256 (por defecto JWT_SECRET)")
	cmd.Flags().StringVar(&opts.userID, "user", "cli", "user_id del token")
	cmd.Flags().StringVar(&opts.companyID, "company", "", "company_id del token")
	cmd.Flags().StringVar(&opts.role, "role", jwt.RoleIssuer, "admin | issuer | auditor")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "", "emisor del token (por defecto JWT_ISSUER)")
	cmd.Flags().IntVar(&opts.expMin, "exp", 60, "minutos de validez")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
