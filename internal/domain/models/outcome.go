package models

// DeclineReason is the canonical classification of why an operation did not succeed
type DeclineReason string

const (
	DeclineReasonDeclined                    DeclineReason = "DECLINED"
	DeclineReasonExpired                     DeclineReason = "EXPIRED"
	DeclineReasonDuplicate                   DeclineReason = "DUPLICATE"
	DeclineReasonInvalid                     DeclineReason = "INVALID"
	DeclineReasonFraud                       DeclineReason = "FRAUD"
	DeclineReasonInsufficientFunds           DeclineReason = "INSUFFICIENT_FUNDS"
	DeclineReasonError                       DeclineReason = "ERROR"
	DeclineReasonContactFinancialInstitution DeclineReason = "CONTACT_FINANCIAL_INSTITUTION"
)

// PaymentStatus is a canonical asynchronous status discovered by a status query
type PaymentStatus string

const (
	PaymentStatusReturned PaymentStatus = "returned"
	PaymentStatusSettled  PaymentStatus = "settled"
)
