package main

import (
	"fmt"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/spf13/cobra"
)

func accountCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Look up or update payment accounts stored at the vendor",
	}
	cmd.AddCommand(accountGetCmd(opts))
	cmd.AddCommand(accountUpdateCmd(opts))
	return cmd
}

func accountGetCmd(opts *globalOptions) *cobra.Command {
	var id, reference string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a payment account by id and/or reference number",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			account, err := gw.GetPaymentAccount(ctx, id, reference)
			if err != nil {
				return err
			}
			if account == nil {
				if msg := gw.ErrorMessage(); msg != "" {
					return fmt.Errorf("payment account not found: %s", msg)
				}
				return fmt.Errorf("payment account not found")
			}
			return printAccount(cmd.OutOrStdout(), opts, account)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Payment account id")
	cmd.Flags().StringVar(&reference, "reference", "", "Payment account reference number")
	return cmd
}

func accountUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		id          string
		reference   string
		paymentType string
		accountType string
		expMonth    int
		expYear     int
		billing     models.BillingInfo
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Push billing and expiration changes for a stored payment account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pt, err := parsePaymentType(paymentType)
			if err != nil {
				return err
			}
			account := &models.PaymentAccount{
				PaymentAccountID: id,
				ReferenceNumber:  reference,
				PaymentType:      pt,
				AccountType:      models.AccountType(accountType),
				ExpirationMonth:  expMonth,
				ExpirationYear:   expYear,
				Billing:          billing,
			}
			if pt.IsACH() && !account.AccountType.Valid() {
				return fmt.Errorf("unknown account type %q", accountType)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			gw, err := a.gateway(ctx, opts.gateway)
			if err != nil {
				return err
			}

			res, err := gw.UpdatePaymentAccount(ctx, id, account)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), opts, gw, reference, res); err != nil {
				return err
			}
			return res.Err()
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Payment account id")
	cmd.Flags().StringVar(&reference, "reference", "", "Payment account reference number")
	cmd.Flags().StringVar(&paymentType, "type", "cc", "Payment type: cc or ach")
	cmd.Flags().StringVar(&accountType, "account-type", string(models.AccountTypePersonalChecking), "Bank account type (ach)")
	cmd.Flags().IntVar(&expMonth, "exp-month", 0, "Card expiration month")
	cmd.Flags().IntVar(&expYear, "exp-year", 0, "Card expiration year (four digits)")
	registerBilling(cmd, &billing)
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func setupCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create hosted payment page sessions",
	}
	cmd.AddCommand(setupCreateCmd(opts))
	cmd.AddCommand(setupURLCmd(opts))
	return cmd
}

func setupCreateCmd(opts *globalOptions) *cobra.Command {
	in := &models.TransactionSetupInput{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request a hosted payment page session",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			setup, err := gw.CreateTransactionSetup(ctx, in)
			if err != nil {
				return err
			}
			if setup == nil {
				if msg := gw.ErrorMessage(); msg != "" {
					return fmt.Errorf("transaction setup rejected: %s", msg)
				}
				return fmt.Errorf("transaction setup is not available for gateway %s", gw.Name())
			}
			return printSetup(cmd.OutOrStdout(), opts, setup)
		},
	}

	cmd.Flags().Int64Var(&in.Amount, "amount", 0, "Amount in minor units (1043 = 10.43)")
	cmd.Flags().StringVar(&in.Currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVar(&in.ReferenceNumber, "reference", "", "Reference number (generated when empty)")
	cmd.Flags().StringVar(&in.ReturnURL, "return-url", "", "URL the hosted page returns to")
	cmd.Flags().StringVar(&in.CompanyName, "company", "", "Company name shown on the hosted page")
	cmd.Flags().BoolVar(&in.Embedded, "embedded", false, "Render the hosted page for an iframe")
	registerBilling(cmd, &in.Billing)
	return cmd
}

func setupURLCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "url [setup-id]",
		Short: "Print the hosted payment page URL for a setup id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			_, err = fmt.Fprintln(cmd.OutOrStdout(), gw.GenerateTransactionSetupURL(args[0]))
			return err
		},
	}
}
