package express

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
)

// Terminal profile for card-not-present e-commerce traffic
const (
	terminalType            = "2" // ECommerce
	cardPresentCode         = "3" // NotPresent
	cardholderPresentCode   = "7" // ECommerce
	cardInputCode           = "4" // ManualKeyed
	cvvPresenceCode         = "1" // NotProvided
	terminalCapabilityCode  = "5" // KeyEntered
	terminalEnvironmentCode = "6" // ECommerce
	motoECICode             = "7" // NonAuthenticatedSecureECommerce

	marketCodeECommerce = "3"
	reversalTypeFull    = "1"

	transactionSetupMethodSale = "1"
)

// tokenPlaceholder wraps a token so the proxy substitutes the real card number
func tokenPlaceholder(token string) string {
	return "{{{" + token + "}}}"
}

// blocks are the operation-specific parts of a request, assembled in the
// element order the vendor schema expects
type blocks struct {
	card           Node
	transaction    Node
	address        Node
	paymentAccount Node
	dda            Node
	extra          []Field
}

// envelope merges the header block with the operation blocks
func (e *engine) envelope(op operation, b blocks) Node {
	n := Node{
		F("Credentials", Node{
			F("AccountID", e.creds.AccountID),
			F("AccountToken", e.creds.AccountToken),
			F("AcceptorID", e.creds.AcceptorID),
		}),
		F("Application", Node{
			F("ApplicationID", e.cfg.Application.ID),
			F("ApplicationName", e.cfg.Application.Name),
			F("ApplicationVersion", e.cfg.Application.Version),
		}),
	}
	if op.namespace == NamespaceTransaction {
		n = append(n, F("Terminal", e.terminal()))
	}

	add := func(name string, v Node) {
		if v != nil {
			n = append(n, F(name, v))
		}
	}
	add("Card", b.card)
	add("Transaction", b.transaction)
	add("Address", b.address)
	add("PaymentAccount", b.paymentAccount)
	add("DemandDepositAccount", b.dda)
	return append(n, b.extra...)
}

func (e *engine) terminal() Node {
	return Node{
		F("TerminalID", e.creds.TerminalID),
		F("TerminalType", terminalType),
		F("CardPresentCode", cardPresentCode),
		F("CardholderPresentCode", cardholderPresentCode),
		F("CardInputCode", cardInputCode),
		F("CVVPresenceCode", cvvPresenceCode),
		F("TerminalCapabilityCode", terminalCapabilityCode),
		F("TerminalEnvironmentCode", terminalEnvironmentCode),
		F("MotoECICode", motoECICode),
	}
}

func (e *engine) formatAmount(amount int64, currency string) (string, error) {
	s, err := e.formatter.Format(amount, currency)
	if err != nil {
		return "", &pkgerrors.ValidationError{Field: "amount", Message: err.Error(), Err: err}
	}
	return s, nil
}

// saleTransaction builds the Transaction block for authorize and sale
func (e *engine) saleTransaction(in *models.OperationInput) (Node, error) {
	amount, err := e.formatAmount(in.Amount, in.Currency)
	if err != nil {
		return nil, err
	}

	n := Node{
		F("TransactionAmount", amount),
		F("ReferenceNumber", in.ReferenceNumber),
	}
	if in.TicketNumber != "" {
		n = append(n, F("TicketNumber", in.TicketNumber))
	}
	n = append(n, F("MarketCode", marketCodeECommerce))
	if e.cfg.DisableDuplicateCheck {
		n = append(n, F("DuplicateCheckDisableFlag", "1"))
	}
	return n, nil
}

// followUpTransaction builds the Transaction block for operations that act on
// a prior vendor transaction. The amount is optional.
func (e *engine) followUpTransaction(in *models.OperationInput, extra ...Field) (Node, error) {
	if in.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "vendor transaction id is required")
	}

	n := Node{F("TransactionID", in.TransactionID)}
	if in.Amount > 0 {
		amount, err := e.formatAmount(in.Amount, in.Currency)
		if err != nil {
			return nil, err
		}
		n = append(n, F("TransactionAmount", amount))
	}
	if in.ReferenceNumber != "" {
		n = append(n, F("ReferenceNumber", in.ReferenceNumber))
	}
	if in.TicketNumber != "" {
		n = append(n, F("TicketNumber", in.TicketNumber))
	}
	n = append(n, F("MarketCode", marketCodeECommerce))
	return append(n, extra...), nil
}

// address builds the Address block, or nil when no billing data is present
func address(b models.BillingInfo) Node {
	if b == (models.BillingInfo{}) {
		return nil
	}
	return Node{
		F("BillingName", b.Name),
		F("BillingEmail", b.Email),
		F("BillingAddress1", b.Address1),
		F("BillingAddress2", b.Address2),
		F("BillingCity", b.City),
		F("BillingState", b.State),
		F("BillingZipcode", b.PostalCode),
	}
}

func expiration(month, year int) (string, string) {
	return fmt.Sprintf("%02d", month), fmt.Sprintf("%02d", year%100)
}

// instrumentValue normalizes pointer variants to values
func instrumentValue(i models.PaymentInstrument) models.PaymentInstrument {
	switch v := i.(type) {
	case *models.Card:
		if v != nil {
			return *v
		}
	case *models.StoredAccount:
		if v != nil {
			return *v
		}
	case *models.AchRaw:
		if v != nil {
			return *v
		}
	case *models.AchStored:
		if v != nil {
			return *v
		}
	default:
		return i
	}
	return nil
}

func invalidInstrument(message string) error {
	return pkgerrors.NewValidationError("instrument", message)
}

// achBlocks builds the PaymentAccount and DemandDepositAccount blocks for an
// ACH instrument. Raw account numbers are decrypted here and nowhere else.
func (e *engine) achBlocks(inst models.PaymentInstrument) (paymentAccount, dda Node, err error) {
	switch v := instrumentValue(inst).(type) {
	case models.AchStored:
		if v.PaymentAccountID == "" {
			return nil, nil, invalidInstrument("stored ACH account requires a payment account id")
		}
		return Node{F("PaymentAccountID", v.PaymentAccountID)},
			Node{F("DDAAccountType", v.AccountType.DDAAccountType())},
			nil

	case models.AchRaw:
		if v.EncryptedAccountNumber == "" || v.RoutingNumber == "" {
			return nil, nil, invalidInstrument("raw ACH account requires account and routing numbers")
		}
		if e.decryptor == nil {
			return nil, nil, fmt.Errorf("%s: no decryptor configured for raw ACH account numbers", e.name)
		}
		accountNumber, err := e.decryptor.Decrypt(v.EncryptedAccountNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt account number: %w", err)
		}
		return nil, Node{
			F("AccountNumber", accountNumber),
			F("RoutingNumber", v.RoutingNumber),
			F("DDAAccountType", v.AccountType.DDAAccountType()),
			F("CheckType", v.AccountType.CheckType()),
		}, nil
	}
	return nil, nil, invalidInstrument("ACH operations require a stored ACH account or raw account and routing numbers")
}

// directCardBlocks maps a card instrument for the direct client: the token
// is the vendor payment account id
func directCardBlocks(inst models.PaymentInstrument) (card, paymentAccount Node, err error) {
	switch v := instrumentValue(inst).(type) {
	case models.StoredAccount:
		if v.PaymentAccountID == "" {
			return nil, nil, invalidInstrument("stored account requires a payment account id")
		}
		return nil, Node{F("PaymentAccountID", v.PaymentAccountID)}, nil

	case models.Card:
		if v.Token == "" {
			return nil, nil, invalidInstrument("card token is required")
		}
		if v.HasExpiration() {
			month, year := expiration(v.ExpirationMonth, v.ExpirationYear)
			card = Node{F("ExpirationMonth", month), F("ExpirationYear", year)}
		}
		return card, Node{F("PaymentAccountID", v.Token)}, nil
	}
	return nil, nil, invalidInstrument("card operations require a card or stored account")
}

// tokenizedCardBlock maps a card instrument for the proxy client. Expiration
// is mandatory on every card operation.
func tokenizedCardBlock(inst models.PaymentInstrument) (Node, error) {
	v, ok := instrumentValue(inst).(models.Card)
	if !ok || !v.HasExpiration() {
		return nil, pkgerrors.NewMissingExpirationError()
	}
	if v.Token == "" {
		return nil, invalidInstrument("card token is required")
	}
	month, year := expiration(v.ExpirationMonth, v.ExpirationYear)
	return Node{
		F("CardNumber", tokenPlaceholder(v.Token)),
		F("ExpirationMonth", month),
		F("ExpirationYear", year),
	}, nil
}

var sensitiveElement = regexp.MustCompile(`<(AccountNumber|CardNumber)>([^<]*)<`)

// maskSensitive hides account and card numbers in a request body before it
// is stored or logged. Token placeholders are left intact.
func maskSensitive(body string) string {
	return sensitiveElement.ReplaceAllStringFunc(body, func(m string) string {
		sub := sensitiveElement.FindStringSubmatch(m)
		return "<" + sub[1] + ">" + maskValue(sub[2]) + "<"
	})
}

func maskValue(v string) string {
	if strings.HasPrefix(v, "{{{") || v == "" {
		return v
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
