package models

import (
	"strings"

	"github.com/google/uuid"
)

// PaymentType selects the instrument family an operation runs against
type PaymentType string

const (
	PaymentTypeCC  PaymentType = "CC"  // Credit card
	PaymentTypeACH PaymentType = "ACH" // Bank debit
)

// IsACH reports whether the payment type is a bank debit
func (p PaymentType) IsACH() bool {
	return p == PaymentTypeACH
}

// BillingInfo represents billing information for a payment
type BillingInfo struct {
	Name       string
	Email      string
	Address1   string
	Address2   string
	City       string
	State      string
	PostalCode string
}

// OperationInput is the caller-constructed request for a single gateway operation.
// It lives for the duration of one call and is never persisted.
type OperationInput struct {
	Amount   int64  // Minor units (e.g. 1043 = $10.43)
	Currency string // ISO 4217 code

	ReferenceNumber string // Caller correlation / idempotency key
	TicketNumber    string // Order or invoice number
	TransactionID   string // Vendor transaction id for capture, cancel, credit and status

	PaymentType PaymentType
	Instrument  PaymentInstrument
	Billing     BillingInfo
}

// NewReferenceNumber returns a fresh correlation key for callers that do not supply one.
// The vendor caps ReferenceNumber at 50 characters; a hyphen-free UUID is 32.
func NewReferenceNumber() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
