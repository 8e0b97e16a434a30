package main

import (
	"fmt"
	"strings"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/spf13/cobra"
)

// inputFlags collects the flags shared by the transaction commands
type inputFlags struct {
	amount        int64
	currency      string
	reference     string
	ticket        string
	transactionID string
	paymentType   string

	// Card
	token    string
	expMonth int
	expYear  int

	// Stored account (card or ACH)
	paymentAccountID string

	// Raw ACH
	accountNumber string // Ciphertext from "gatewayctl encrypt"
	routingNumber string
	accountType   string

	billing models.BillingInfo
}

func (f *inputFlags) registerAmount(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.amount, "amount", 0, "Amount in minor units (1043 = 10.43)")
	cmd.Flags().StringVar(&f.currency, "currency", "USD", "ISO 4217 currency code")
}

func (f *inputFlags) registerReferences(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.reference, "reference", "", "Reference number (generated when empty)")
	cmd.Flags().StringVar(&f.ticket, "ticket", "", "Ticket (order) number")
	cmd.Flags().StringVar(&f.paymentType, "type", "cc", "Payment type: cc or ach")
}

func (f *inputFlags) registerTransactionID(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.transactionID, "transaction-id", "", "Vendor transaction id")
}

func (f *inputFlags) registerInstrument(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.token, "token", "", "Card token (payment account id or proxy token)")
	cmd.Flags().IntVar(&f.expMonth, "exp-month", 0, "Card expiration month")
	cmd.Flags().IntVar(&f.expYear, "exp-year", 0, "Card expiration year (four digits)")
	cmd.Flags().StringVar(&f.paymentAccountID, "payment-account-id", "", "Stored payment account id")
	cmd.Flags().StringVar(&f.accountNumber, "account-number", "", "Encrypted bank account number")
	cmd.Flags().StringVar(&f.routingNumber, "routing-number", "", "Bank routing number")
	cmd.Flags().StringVar(&f.accountType, "account-type", string(models.AccountTypePersonalChecking), "Bank account type")
}

func registerBilling(cmd *cobra.Command, b *models.BillingInfo) {
	cmd.Flags().StringVar(&b.Name, "billing-name", "", "Billing name")
	cmd.Flags().StringVar(&b.Email, "billing-email", "", "Billing email")
	cmd.Flags().StringVar(&b.Address1, "billing-address1", "", "Billing address line 1")
	cmd.Flags().StringVar(&b.Address2, "billing-address2", "", "Billing address line 2")
	cmd.Flags().StringVar(&b.City, "billing-city", "", "Billing city")
	cmd.Flags().StringVar(&b.State, "billing-state", "", "Billing state")
	cmd.Flags().StringVar(&b.PostalCode, "billing-zip", "", "Billing postal code")
}

// build assembles the operation input. newReference controls whether an
// empty reference number is generated.
func (f *inputFlags) build(newReference bool) (*models.OperationInput, error) {
	paymentType, err := parsePaymentType(f.paymentType)
	if err != nil {
		return nil, err
	}

	in := &models.OperationInput{
		Amount:          f.amount,
		Currency:        strings.ToUpper(f.currency),
		ReferenceNumber: f.reference,
		TicketNumber:    f.ticket,
		TransactionID:   f.transactionID,
		PaymentType:     paymentType,
		Billing:         f.billing,
	}
	if in.ReferenceNumber == "" && newReference {
		in.ReferenceNumber = models.NewReferenceNumber()
	}

	in.Instrument, err = f.instrument(paymentType)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (f *inputFlags) instrument(paymentType models.PaymentType) (models.PaymentInstrument, error) {
	if paymentType.IsACH() {
		accountType := models.AccountType(f.accountType)
		if !accountType.Valid() {
			return nil, fmt.Errorf("unknown account type %q", f.accountType)
		}
		switch {
		case f.accountNumber != "":
			return models.AchRaw{
				EncryptedAccountNumber: f.accountNumber,
				RoutingNumber:          f.routingNumber,
				AccountType:            accountType,
			}, nil
		case f.paymentAccountID != "":
			return models.AchStored{PaymentAccountID: f.paymentAccountID, AccountType: accountType}, nil
		}
		return nil, nil
	}

	switch {
	case f.token != "":
		return models.Card{Token: f.token, ExpirationMonth: f.expMonth, ExpirationYear: f.expYear}, nil
	case f.paymentAccountID != "":
		return models.StoredAccount{PaymentAccountID: f.paymentAccountID}, nil
	}
	return nil, nil
}

func parsePaymentType(s string) (models.PaymentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "CC", "CARD":
		return models.PaymentTypeCC, nil
	case "ACH":
		return models.PaymentTypeACH, nil
	}
	return "", fmt.Errorf("unknown payment type %q (want cc or ach)", s)
}
