package main

import (
	"context"
	"fmt"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"github.com/spf13/cobra"
)

// operationFunc matches the Gateway method expressions (ports.Gateway.Authorize, ...)
type operationFunc func(gw ports.Gateway, ctx context.Context, in *models.OperationInput) (*ports.Result, error)

// runOperation wires the app, runs op and prints the outcome. Declines and
// transport failures exit non-zero after printing.
func runOperation(cmd *cobra.Command, opts *globalOptions, flags *inputFlags, newReference bool, op operationFunc) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	gw, err := a.gateway(ctx, opts.gateway)
	if err != nil {
		return err
	}

	in, err := flags.build(newReference)
	if err != nil {
		return err
	}

	res, err := op(gw, ctx, in)
	if err != nil {
		return err
	}

	if err := printResult(cmd.OutOrStdout(), opts, gw, in.ReferenceNumber, res); err != nil {
		return err
	}
	return res.Err()
}

func authorizeCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize a card payment without capturing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, flags, true, ports.Gateway.Authorize)
		},
	}
	flags.registerAmount(cmd)
	flags.registerReferences(cmd)
	flags.registerInstrument(cmd)
	registerBilling(cmd, &flags.billing)
	return cmd
}

func captureCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a prior authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, flags, false, ports.Gateway.Capture)
		},
	}
	flags.registerAmount(cmd)
	flags.registerReferences(cmd)
	flags.registerTransactionID(cmd)
	flags.registerInstrument(cmd)
	_ = cmd.MarkFlagRequired("transaction-id")
	return cmd
}

func saleCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:     "sale",
		Aliases: []string{"auth-capture"},
		Short:   "Authorize and capture a card or ACH payment in one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, flags, true, ports.Gateway.AuthCapture)
		},
	}
	flags.registerAmount(cmd)
	flags.registerReferences(cmd)
	flags.registerInstrument(cmd)
	registerBilling(cmd, &flags.billing)
	return cmd
}

func cancelCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:     "cancel",
		Aliases: []string{"void"},
		Short:   "Reverse a card transaction or void a check",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, flags, false, ports.Gateway.Cancel)
		},
	}
	flags.registerAmount(cmd)
	flags.registerReferences(cmd)
	flags.registerTransactionID(cmd)
	flags.registerInstrument(cmd)
	_ = cmd.MarkFlagRequired("transaction-id")
	return cmd
}

func creditCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:     "credit",
		Aliases: []string{"refund"},
		Short:   "Refund a prior transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, flags, true, ports.Gateway.Credit)
		},
	}
	flags.registerAmount(cmd)
	flags.registerReferences(cmd)
	flags.registerTransactionID(cmd)
	flags.registerInstrument(cmd)
	_ = cmd.MarkFlagRequired("transaction-id")
	return cmd
}

func statusCmd(opts *globalOptions) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the status of a prior transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.transactionID == "" && flags.reference == "" {
				return fmt.Errorf("one of --transaction-id or --reference is required")
			}
			return runOperation(cmd, opts, flags, false, ports.Gateway.Status)
		},
	}
	flags.registerReferences(cmd)
	flags.registerTransactionID(cmd)
	flags.registerInstrument(cmd)
	return cmd
}
