package express

import (
	"context"
	"strconv"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
)

// DirectGatewayName labels the direct client in logs and metrics
const DirectGatewayName = "express"

// Vendor PaymentAccountType codes
const (
	paymentAccountTypeCreditCard = "0"
	paymentAccountTypeChecking   = "1"
	paymentAccountTypeSavings    = "2"
)

// DirectClient talks to the vendor XML API directly. Cards are referenced by
// vendor payment account id; ACH accepts stored accounts or raw bank details.
//
// A DirectClient keeps the state of its most recent operation and must not be
// shared between goroutines.
type DirectClient struct {
	engine
}

var _ ports.Gateway = (*DirectClient)(nil)

// NewDirectClient creates a client bound to one set of vendor credentials
func NewDirectClient(
	cfg ClientConfig,
	creds models.Credentials,
	httpClient ports.HTTPClient,
	decryptor ports.Decryptor,
	formatter ports.AmountFormatter,
	logger ports.Logger,
) *DirectClient {
	return &DirectClient{engine: engine{
		name:       DirectGatewayName,
		creds:      creds,
		cfg:        cfg,
		endpoints:  cfg.ResolvedEndpoints(),
		httpClient: httpClient,
		formatter:  formatter,
		decryptor:  decryptor,
		logger:     logger,
		wire:       directWire{},
		cards:      directCards,
	}}
}

// directCards embeds the card only where the vendor needs the instrument;
// follow-up operations reference the prior transaction id instead
func directCards(op string, inst models.PaymentInstrument) (Node, Node, error) {
	switch op {
	case OpAuthorize, OpAuthCapture:
		return directCardBlocks(inst)
	}
	return nil, nil, nil
}

// GetPaymentAccount looks up a stored payment account. Returns nil without a
// call when both identifiers are empty, and nil when the vendor finds nothing.
func (c *DirectClient) GetPaymentAccount(ctx context.Context, accountID, referenceNumber string) (*models.PaymentAccount, error) {
	c.Reset()
	if accountID == "" && referenceNumber == "" {
		return nil, nil
	}

	result, err := c.exchange(ctx, opPaymentAccountQuery, blocks{
		extra: []Field{F("PaymentAccountParameters", Node{
			F("PaymentAccountID", accountID),
			F("PaymentAccountReferenceNumber", referenceNumber),
		})},
	})
	if err != nil {
		return nil, err
	}
	if !result.Successful() {
		return nil, nil
	}

	items := lookupItems(c.parsed, "Response", "QueryData", "Items", "Item")
	if len(items) == 0 {
		return nil, nil
	}
	return paymentAccountFromItem(items[0]), nil
}

// UpdatePaymentAccount pushes billing and expiration changes for a stored
// account. The payload shape follows the account's payment type.
func (c *DirectClient) UpdatePaymentAccount(ctx context.Context, accountID string, account *models.PaymentAccount) (*ports.Result, error) {
	c.Reset()
	if account == nil {
		return nil, pkgerrors.NewValidationError("account", "payment account record is required")
	}
	if accountID == "" {
		accountID = account.PaymentAccountID
	}
	if accountID == "" {
		return nil, pkgerrors.NewValidationError("payment_account_id", "payment account id is required")
	}

	c.paymentType = account.PaymentType
	if c.paymentType == "" {
		c.paymentType = models.PaymentTypeCC
	}

	b := blocks{
		address: address(account.Billing),
		paymentAccount: Node{
			F("PaymentAccountID", accountID),
			F("PaymentAccountReferenceNumber", account.ReferenceNumber),
		},
	}
	if c.paymentType.IsACH() {
		b.dda = Node{
			F("DDAAccountType", account.AccountType.DDAAccountType()),
			F("CheckType", account.AccountType.CheckType()),
		}
	} else if account.ExpirationMonth > 0 && account.ExpirationYear > 0 {
		month, year := expiration(account.ExpirationMonth, account.ExpirationYear)
		b.card = Node{F("ExpirationMonth", month), F("ExpirationYear", year)}
	}

	return c.exchange(ctx, opPaymentAccountUpdate, b)
}

// CreateTransactionSetup requests a hosted payment page session for a card
// sale. Returns nil when the vendor rejects the request.
func (c *DirectClient) CreateTransactionSetup(ctx context.Context, in *models.TransactionSetupInput) (*models.TransactionSetup, error) {
	c.Reset()
	if in == nil {
		return nil, pkgerrors.NewValidationError("input", "transaction setup input is required")
	}
	c.paymentType = models.PaymentTypeCC

	amount, err := c.formatAmount(in.Amount, in.Currency)
	if err != nil {
		return nil, err
	}
	reference := in.ReferenceNumber
	if reference == "" {
		reference = models.NewReferenceNumber()
	}

	embedded := "0"
	if in.Embedded {
		embedded = "1"
	}

	result, err := c.exchange(ctx, opTransactionSetup, blocks{
		transaction: Node{
			F("TransactionAmount", amount),
			F("ReferenceNumber", reference),
			F("MarketCode", marketCodeECommerce),
		},
		address: address(in.Billing),
		extra: []Field{F("TransactionSetup", Node{
			F("TransactionSetupMethod", transactionSetupMethodSale),
			F("Embedded", embedded),
			F("CompanyName", in.CompanyName),
			F("AutoReturn", "1"),
			F("ReturnURL", in.ReturnURL),
		})},
	})
	if err != nil {
		return nil, err
	}
	if !result.Successful() {
		return nil, nil
	}

	id := lookupString(c.parsed, "Response", "TransactionSetup", "TransactionSetupID")
	if id == "" {
		return nil, nil
	}
	return &models.TransactionSetup{ID: id, URL: c.GenerateTransactionSetupURL(id)}, nil
}

// paymentAccountFromItem builds a PaymentAccount from a PaymentAccountQuery item
func paymentAccountFromItem(item map[string]any) *models.PaymentAccount {
	account := &models.PaymentAccount{
		PaymentAccountID:       lookupString(item, "PaymentAccountID"),
		ReferenceNumber:        lookupString(item, "PaymentAccountReferenceNumber"),
		TruncatedAccountNumber: lookupString(item, "TruncatedAccountNumber"),
		Billing: models.BillingInfo{
			Name:       lookupString(item, "BillingName"),
			Email:      lookupString(item, "BillingEmail"),
			Address1:   lookupString(item, "BillingAddress1"),
			Address2:   lookupString(item, "BillingAddress2"),
			City:       lookupString(item, "BillingCity"),
			State:      lookupString(item, "BillingState"),
			PostalCode: lookupString(item, "BillingZipcode"),
		},
		Raw: item,
	}

	switch lookupString(item, "PaymentAccountType") {
	case paymentAccountTypeChecking, paymentAccountTypeSavings:
		account.PaymentType = models.PaymentTypeACH
		dda := models.DDAAccountTypeChecking
		if lookupString(item, "PaymentAccountType") == paymentAccountTypeSavings {
			dda = models.DDAAccountTypeSavings
		}
		account.AccountType = models.AccountTypeFromCodes(dda, lookupString(item, "CheckType"))
	default:
		account.PaymentType = models.PaymentTypeCC
		account.ExpirationMonth, _ = strconv.Atoi(lookupString(item, "ExpirationMonth"))
		if year, err := strconv.Atoi(lookupString(item, "ExpirationYear")); err == nil && year > 0 {
			if year < 100 {
				year += 2000
			}
			account.ExpirationYear = year
		}
	}

	return account
}
