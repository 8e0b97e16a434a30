package models

// PaymentAccount is a payment instrument stored at the vendor
type PaymentAccount struct {
	PaymentAccountID       string
	ReferenceNumber        string
	PaymentType            PaymentType
	AccountType            AccountType // ACH only
	ExpirationMonth        int         // Card only
	ExpirationYear         int         // Card only, four digits
	TruncatedAccountNumber string
	Billing                BillingInfo

	// Raw holds the vendor's query item as decoded
	Raw map[string]any
}

// TransactionSetupInput requests a hosted payment page session
type TransactionSetupInput struct {
	ReferenceNumber string
	ReturnURL       string
	Amount          int64
	Currency        string
	CompanyName     string
	Embedded        bool
	Billing         BillingInfo
}

// TransactionSetup is a hosted payment page session issued by the vendor
type TransactionSetup struct {
	ID  string
	URL string
}
