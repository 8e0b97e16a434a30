package main

import (
	"fmt"

	"github.com/kevin07696/express-gateway/internal/adapters/secrets"
	"github.com/kevin07696/express-gateway/internal/config"
	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/services/credentials"
	"github.com/kevin07696/express-gateway/pkg/crypto"
	"github.com/spf13/cobra"
)

func credentialsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Provision and inspect gateway credentials in the credential store",
	}
	cmd.AddCommand(credentialsPutCmd(opts))
	cmd.AddCommand(credentialsShowCmd(opts))
	return cmd
}

func credentialsPutCmd(opts *globalOptions) *cobra.Command {
	creds := models.Credentials{}
	proxy := models.TokenServiceCredentials{}

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Write credentials for the configured gateway environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if proxy.ID != "" || proxy.APIKey != "" || proxy.URL != "" {
				creds.TokenService = &proxy
			}
			if err := credentials.Validate(creds); err != nil {
				return err
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			writer, ok := a.store.(secrets.CredentialWriter)
			if !ok {
				return fmt.Errorf("credential source %s is read-only", a.cfg.Credentials.Source)
			}
			if err := writer.PutCredentials(ctx, opts.gateway, a.cfg.Gateway.Environment, &creds); err != nil {
				return err
			}
			a.resolver.Invalidate(opts.gateway, a.cfg.Gateway.Environment)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored credentials for %s/%s\n", opts.gateway, a.cfg.Gateway.Environment)
			return err
		},
	}

	cmd.Flags().StringVar(&creds.AccountID, "account-id", "", "Vendor account id")
	cmd.Flags().StringVar(&creds.AccountToken, "account-token", "", "Vendor account token")
	cmd.Flags().StringVar(&creds.AcceptorID, "acceptor-id", "", "Vendor acceptor id")
	cmd.Flags().StringVar(&creds.TerminalID, "terminal-id", "", "Vendor terminal id")
	cmd.Flags().StringVar(&proxy.URL, "proxy-url", "", "Tokenization proxy URL")
	cmd.Flags().StringVar(&proxy.APIKey, "proxy-api-key", "", "Tokenization proxy API key")
	cmd.Flags().StringVar(&proxy.ID, "proxy-id", "", "Tokenization proxy account id")
	return cmd
}

func credentialsShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Resolve and print credentials with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			creds, err := a.resolver.Resolve(ctx, opts.gateway, a.cfg.Gateway.Environment)
			if err != nil {
				return err
			}
			return printCredentials(cmd.OutOrStdout(), opts, creds)
		},
	}
}

func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt [account-number]",
		Short: "Encrypt a bank account number with FIELD_ENCRYPTION_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if cfg.Crypto.FieldKey == "" {
				return fmt.Errorf("FIELD_ENCRYPTION_KEY is required")
			}

			cipher, err := crypto.NewFieldCipherFromHex(cfg.Crypto.FieldKey)
			if err != nil {
				return err
			}
			ciphertext, err := cipher.Encrypt(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ciphertext)
			return err
		},
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a hex encoded FIELD_ENCRYPTION_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
