package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryApproved          ErrorCategory = "approved"
	CategoryDeclined          ErrorCategory = "declined"
	CategoryInsufficientFunds ErrorCategory = "insufficient_funds"
	CategoryInvalidCard       ErrorCategory = "invalid_card"
	CategoryExpiredCard       ErrorCategory = "expired_card"
	CategoryFraud             ErrorCategory = "fraud"
	CategorySystemError       ErrorCategory = "system_error"
	CategoryNetworkError      ErrorCategory = "network_error"
	CategoryInvalidRequest    ErrorCategory = "invalid_request"
)

var (
	// ErrUnsupportedOperation matches any UnsupportedOperationError via errors.Is
	ErrUnsupportedOperation = errors.New("operation not supported")

	// ErrMissingExpiration is returned when card expiration month or year is absent
	ErrMissingExpiration = errors.New("card expiration month and year are required")
)

// PaymentError represents a payment processing error with detailed context
type PaymentError struct {
	Code           string
	Message        string
	GatewayMessage string
	IsRetriable    bool
	Category       ErrorCategory
	Details        map[string]interface{}
}

func (e *PaymentError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("%s: %s (gateway: %s)", e.Code, e.Message, e.GatewayMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory, retriable bool) *PaymentError {
	return &PaymentError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
		Details:     make(map[string]interface{}),
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel behind the validation failure, if any
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewMissingExpirationError reports absent card expiration data
func NewMissingExpirationError() *ValidationError {
	return &ValidationError{
		Field:   "expiration",
		Message: ErrMissingExpiration.Error(),
		Err:     ErrMissingExpiration,
	}
}

// UnsupportedOperationError signals a caller contract violation: the operation
// cannot be performed for this gateway client and payment type combination.
type UnsupportedOperationError struct {
	Gateway   string
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s not supported: %s", e.Gateway, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s: %s not supported", e.Gateway, e.Operation)
}

// Is lets errors.Is(err, ErrUnsupportedOperation) match
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// NewUnsupportedOperationError creates a new unsupported operation error
func NewUnsupportedOperationError(gateway, operation, reason string) *UnsupportedOperationError {
	return &UnsupportedOperationError{
		Gateway:   gateway,
		Operation: operation,
		Reason:    reason,
	}
}
