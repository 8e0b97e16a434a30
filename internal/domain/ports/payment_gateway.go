package ports

import (
	"context"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
)

// Outcome classifies how a gateway operation ended
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeDecline          Outcome = "decline"
	OutcomeTransportFailure Outcome = "transport_failure"
	OutcomeNotPerformed     Outcome = "not_performed" // No call was made (operation is a no-op for this client)
)

// Result is the per-call outcome of a gateway operation
type Result struct {
	Outcome       Outcome
	TransactionID string
	ResponseCode  string
	Message       string
	DeclineReason *models.DeclineReason
	PaymentStatus *models.PaymentStatus
	Data          map[string]any
	HTTPCode      int
}

// Completed reports whether the exchange reached response evaluation.
// A decline is completed; a transport failure or skipped call is not.
func (r *Result) Completed() bool {
	return r != nil && (r.Outcome == OutcomeSuccess || r.Outcome == OutcomeDecline)
}

// Successful reports whether the vendor approved the operation
func (r *Result) Successful() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// Err converts a decline or transport failure into a PaymentError for callers
// that prefer error-based control flow. Returns nil on success.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	switch r.Outcome {
	case OutcomeDecline:
		reason := models.DeclineReasonDeclined
		if r.DeclineReason != nil {
			reason = *r.DeclineReason
		}
		err := pkgerrors.NewPaymentError(r.ResponseCode, string(reason), declineCategory(reason), reason == models.DeclineReasonError)
		err.GatewayMessage = r.Message
		return err
	case OutcomeTransportFailure:
		err := pkgerrors.NewPaymentError("NETWORK_ERROR", "Failed to reach payment gateway", pkgerrors.CategoryNetworkError, true)
		err.GatewayMessage = r.Message
		return err
	}
	return nil
}

func declineCategory(reason models.DeclineReason) pkgerrors.ErrorCategory {
	switch reason {
	case models.DeclineReasonExpired:
		return pkgerrors.CategoryExpiredCard
	case models.DeclineReasonInvalid:
		return pkgerrors.CategoryInvalidRequest
	case models.DeclineReasonFraud:
		return pkgerrors.CategoryFraud
	case models.DeclineReasonInsufficientFunds:
		return pkgerrors.CategoryInsufficientFunds
	case models.DeclineReasonError:
		return pkgerrors.CategorySystemError
	default:
		return pkgerrors.CategoryDeclined
	}
}

// Gateway is the operation contract shared by every gateway client.
//
// Operations return an error only when the caller violated the contract
// (unsupported operation for the client or payment type, malformed instrument).
// Declines and transport failures are reported through the Result and the
// client's state getters.
//
// A Gateway instance keeps the state of its most recent operation and is not
// safe for concurrent use; concurrent callers need separate instances.
type Gateway interface {
	// Authorize reserves funds without capturing them. Card only.
	Authorize(ctx context.Context, in *models.OperationInput) (*Result, error)

	// Capture completes a prior authorization by vendor transaction id. Card only.
	Capture(ctx context.Context, in *models.OperationInput) (*Result, error)

	// AuthCapture authorizes and captures in one step (sale)
	AuthCapture(ctx context.Context, in *models.OperationInput) (*Result, error)

	// Cancel voids or reverses a prior transaction
	Cancel(ctx context.Context, in *models.OperationInput) (*Result, error)

	// Credit refunds a prior transaction
	Credit(ctx context.Context, in *models.OperationInput) (*Result, error)

	// Status queries the current state of a prior transaction
	Status(ctx context.Context, in *models.OperationInput) (*Result, error)

	// GetPaymentAccount looks up a stored payment account by id and/or reference number.
	// Returns nil when neither identifier is given or the vendor does not find it.
	GetPaymentAccount(ctx context.Context, accountID, referenceNumber string) (*models.PaymentAccount, error)

	// UpdatePaymentAccount pushes billing and expiration changes for a stored account
	UpdatePaymentAccount(ctx context.Context, accountID string, account *models.PaymentAccount) (*Result, error)

	// CreateTransactionSetup requests a hosted payment page session.
	// Returns nil when the vendor rejects the request.
	CreateTransactionSetup(ctx context.Context, in *models.TransactionSetupInput) (*models.TransactionSetup, error)

	// GenerateTransactionSetupURL composes the hosted payment page URL. No network call.
	GenerateTransactionSetupURL(setupID string) string

	// Name identifies the gateway client in logs and metrics
	Name() string

	// State getters for the most recent operation
	IsSuccessful() bool
	TransactionID() string
	ResponseCode() string
	ErrorMessage() string
	HTTPCode() int
	DeclineReason() *models.DeclineReason
	PaymentStatus() *models.PaymentStatus
	ResponseData() map[string]any
}
