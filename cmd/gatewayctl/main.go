package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Drive Express gateway operations against a configured environment",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.gateway, "gateway", "express", "Credential set name in the credential store")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.history, "history", false, "Print the masked request and raw response bodies")

	// Operations
	rootCmd.AddCommand(authorizeCmd(opts))
	rootCmd.AddCommand(captureCmd(opts))
	rootCmd.AddCommand(saleCmd(opts))
	rootCmd.AddCommand(cancelCmd(opts))
	rootCmd.AddCommand(creditCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(accountCmd(opts))
	rootCmd.AddCommand(setupCmd(opts))

	// Tooling
	rootCmd.AddCommand(credentialsCmd(opts))
	rootCmd.AddCommand(encryptCmd())
	rootCmd.AddCommand(keygenCmd())

	return rootCmd
}

type globalOptions struct {
	gateway string
	json    bool
	history bool
}
