package express

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment selects the vendor endpoint set
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment validates an environment name
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvironmentSandbox, "":
		return EnvironmentSandbox, nil
	case EnvironmentProduction:
		return EnvironmentProduction, nil
	}
	return "", fmt.Errorf("unknown gateway environment %q (want sandbox or production)", s)
}

// XML namespaces, one per vendor service
const (
	NamespaceTransaction = "https://transaction.elementexpress.com"
	NamespaceReporting   = "https://reporting.elementexpress.com"
	NamespaceServices    = "https://services.elementexpress.com"
)

// Endpoints are the vendor URLs for one environment
type Endpoints struct {
	Transaction string
	Reporting   string
	Services    string
	HostedPage  string
}

// DefaultEndpoints returns the vendor endpoint set for env
func DefaultEndpoints(env Environment) Endpoints {
	if env == EnvironmentProduction {
		return Endpoints{
			Transaction: "https://transaction.elementexpress.com/",
			Reporting:   "https://reporting.elementexpress.com/",
			Services:    "https://services.elementexpress.com/",
			HostedPage:  "https://transaction.hostedpayments.com/",
		}
	}
	return Endpoints{
		Transaction: "https://certtransaction.elementexpress.com/",
		Reporting:   "https://certreporting.elementexpress.com/",
		Services:    "https://certservices.elementexpress.com/",
		HostedPage:  "https://certtransaction.hostedpayments.com/",
	}
}

// merge returns e with every non-empty field of overrides applied
func (e Endpoints) merge(overrides Endpoints) Endpoints {
	if overrides.Transaction != "" {
		e.Transaction = overrides.Transaction
	}
	if overrides.Reporting != "" {
		e.Reporting = overrides.Reporting
	}
	if overrides.Services != "" {
		e.Services = overrides.Services
	}
	if overrides.HostedPage != "" {
		e.HostedPage = overrides.HostedPage
	}
	return e
}

func (e Endpoints) validate() error {
	for name, raw := range map[string]string{
		"transaction": e.Transaction,
		"reporting":   e.Reporting,
		"services":    e.Services,
		"hosted_page": e.HostedPage,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s endpoint %q", name, raw)
		}
	}
	return nil
}

type service int

const (
	serviceTransaction service = iota
	serviceReporting
	serviceServices
)

func (e Endpoints) url(s service) string {
	switch s {
	case serviceReporting:
		return e.Reporting
	case serviceServices:
		return e.Services
	default:
		return e.Transaction
	}
}

// operation describes one wire call: its root element and the vendor service it targets
type operation struct {
	name      string // metric and log label
	root      string
	namespace string
	service   service
}

func txOp(name, root string) operation {
	return operation{name: name, root: root, namespace: NamespaceTransaction, service: serviceTransaction}
}

// Operation names used in logs, metrics and UnsupportedOperationError
const (
	OpAuthorize              = "authorize"
	OpCapture                = "capture"
	OpAuthCapture            = "auth_capture"
	OpCancel                 = "cancel"
	OpCredit                 = "credit"
	OpStatus                 = "status"
	OpGetPaymentAccount      = "get_payment_account"
	OpUpdatePaymentAccount   = "update_payment_account"
	OpCreateTransactionSetup = "create_transaction_setup"
)

var (
	opCardAuthorize    = txOp(OpAuthorize, "CreditCardAuthorization")
	opCardCapture      = txOp(OpCapture, "CreditCardAuthorizationCompletion")
	opCardSale         = txOp(OpAuthCapture, "CreditCardSale")
	opCheckSale        = txOp(OpAuthCapture, "CheckSale")
	opCardReversal     = txOp(OpCancel, "CreditCardReversal")
	opCheckVoid        = txOp(OpCancel, "CheckVoid")
	opCardReturn       = txOp(OpCredit, "CreditCardReturn")
	opCheckReturn      = txOp(OpCredit, "CheckReturn")
	opTransactionSetup = txOp(OpCreateTransactionSetup, "TransactionSetup")

	opTransactionQuery = operation{
		name: OpStatus, root: "TransactionQuery",
		namespace: NamespaceReporting, service: serviceReporting,
	}
	opPaymentAccountQuery = operation{
		name: OpGetPaymentAccount, root: "PaymentAccountQuery",
		namespace: NamespaceServices, service: serviceServices,
	}
	opPaymentAccountUpdate = operation{
		name: OpUpdatePaymentAccount, root: "PaymentAccountUpdate",
		namespace: NamespaceServices, service: serviceServices,
	}
)

// ApplicationInfo identifies the integrating application to the vendor
type ApplicationInfo struct {
	ID      string
	Name    string
	Version string
}

// ClientConfig holds the settings shared by every client a Factory builds
type ClientConfig struct {
	Environment Environment

	// Endpoints overrides the environment defaults field by field
	Endpoints Endpoints

	Application ApplicationInfo

	// DisableDuplicateCheck sets DuplicateCheckDisableFlag on authorize and sale
	DisableDuplicateCheck bool

	// ProxyURL is the tokenization proxy fallback when credentials carry none
	ProxyURL string
}

// DefaultClientConfig returns the settings for env. The vendor's duplicate
// check is disabled everywhere except production.
func DefaultClientConfig(env Environment) ClientConfig {
	return ClientConfig{
		Environment: env,
		Application: ApplicationInfo{
			ID:      "express-gateway",
			Name:    "express-gateway",
			Version: "1.0.0",
		},
		DisableDuplicateCheck: env != EnvironmentProduction,
	}
}

// ResolvedEndpoints returns the environment defaults with overrides applied
func (c ClientConfig) ResolvedEndpoints() Endpoints {
	return DefaultEndpoints(c.Environment).merge(c.Endpoints)
}
