package express

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
	"github.com/kevin07696/express-gateway/pkg/observability"
)

// Status sub-codes reported by TransactionQuery that change a payment's status
const (
	transactionStatusSettled  = "8"
	transactionStatusReturned = "9"
)

// wire is how a client reaches the vendor: directly, or through a proxy that
// forwards to the vendor endpoint named in a header
type wire interface {
	newRequest(ctx context.Context, target string, body []byte) (*http.Request, error)
	decode(body []byte) (map[string]any, error)
}

// cardPolicy maps a card instrument to request blocks for one operation
type cardPolicy func(op string, inst models.PaymentInstrument) (card, paymentAccount Node, err error)

// engine is the exchange machinery shared by the direct and proxy clients.
// It owns the result state of the most recent operation.
type engine struct {
	ResultState

	name       string
	creds      models.Credentials
	cfg        ClientConfig
	endpoints  Endpoints
	httpClient ports.HTTPClient
	formatter  ports.AmountFormatter
	decryptor  ports.Decryptor
	logger     ports.Logger

	wire  wire
	cards cardPolicy
}

// Name identifies the client in logs and metrics
func (e *engine) Name() string {
	return e.name
}

// GenerateTransactionSetupURL composes the hosted payment page URL for a setup id
func (e *engine) GenerateTransactionSetupURL(setupID string) string {
	return e.endpoints.HostedPage + "?TransactionSetupID=" + setupID
}

// begin resets per-operation state and validates the input
func (e *engine) begin(in *models.OperationInput) error {
	e.Reset()
	if in == nil {
		return pkgerrors.NewValidationError("input", "operation input is required")
	}
	e.paymentType = in.PaymentType
	if e.paymentType == "" {
		e.paymentType = models.PaymentTypeCC
	}
	return nil
}

func (e *engine) unsupported(op, reason string) error {
	return pkgerrors.NewUnsupportedOperationError(e.name, op, reason)
}

// Authorize reserves funds on a card. ACH has no hold/capture split.
func (e *engine) Authorize(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}
	if e.paymentType.IsACH() {
		return nil, e.unsupported(OpAuthorize, "ACH has no authorization phase")
	}

	card, paymentAccount, err := e.cards(OpAuthorize, in.Instrument)
	if err != nil {
		return nil, err
	}
	tx, err := e.saleTransaction(in)
	if err != nil {
		return nil, err
	}

	return e.exchange(ctx, opCardAuthorize, blocks{
		card:           card,
		transaction:    tx,
		address:        address(in.Billing),
		paymentAccount: paymentAccount,
	})
}

// Capture completes a prior card authorization by vendor transaction id
func (e *engine) Capture(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}
	if e.paymentType.IsACH() {
		return nil, e.unsupported(OpCapture, "ACH is completed at sale time")
	}

	card, paymentAccount, err := e.cards(OpCapture, in.Instrument)
	if err != nil {
		return nil, err
	}
	tx, err := e.followUpTransaction(in)
	if err != nil {
		return nil, err
	}

	return e.exchange(ctx, opCardCapture, blocks{
		card:           card,
		transaction:    tx,
		paymentAccount: paymentAccount,
	})
}

// AuthCapture authorizes and captures in one step
func (e *engine) AuthCapture(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}

	tx, err := e.saleTransaction(in)
	if err != nil {
		return nil, err
	}

	if e.paymentType.IsACH() {
		paymentAccount, dda, err := e.achBlocks(in.Instrument)
		if err != nil {
			return nil, err
		}
		return e.exchange(ctx, opCheckSale, blocks{
			transaction:    tx,
			address:        address(in.Billing),
			paymentAccount: paymentAccount,
			dda:            dda,
		})
	}

	card, paymentAccount, err := e.cards(OpAuthCapture, in.Instrument)
	if err != nil {
		return nil, err
	}
	return e.exchange(ctx, opCardSale, blocks{
		card:           card,
		transaction:    tx,
		address:        address(in.Billing),
		paymentAccount: paymentAccount,
	})
}

// Cancel reverses a card transaction or voids a check
func (e *engine) Cancel(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}

	if e.paymentType.IsACH() {
		tx, err := e.followUpTransaction(in)
		if err != nil {
			return nil, err
		}
		return e.exchange(ctx, opCheckVoid, blocks{transaction: tx})
	}

	card, paymentAccount, err := e.cards(OpCancel, in.Instrument)
	if err != nil {
		return nil, err
	}
	tx, err := e.followUpTransaction(in, F("ReversalType", reversalTypeFull))
	if err != nil {
		return nil, err
	}
	return e.exchange(ctx, opCardReversal, blocks{
		card:           card,
		transaction:    tx,
		paymentAccount: paymentAccount,
	})
}

// Credit refunds a prior card transaction or returns a check
func (e *engine) Credit(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}

	if e.paymentType.IsACH() {
		tx, err := e.followUpTransaction(in)
		if err != nil {
			return nil, err
		}
		return e.exchange(ctx, opCheckReturn, blocks{transaction: tx})
	}

	card, paymentAccount, err := e.cards(OpCredit, in.Instrument)
	if err != nil {
		return nil, err
	}
	tx, err := e.followUpTransaction(in)
	if err != nil {
		return nil, err
	}
	return e.exchange(ctx, opCardReturn, blocks{
		card:           card,
		transaction:    tx,
		address:        address(in.Billing),
		paymentAccount: paymentAccount,
	})
}

// Status queries a prior transaction by vendor id and/or reference number.
// The query item is exposed through ResponseData, and a settled or returned
// sub-status through PaymentStatus.
func (e *engine) Status(ctx context.Context, in *models.OperationInput) (*ports.Result, error) {
	if err := e.begin(in); err != nil {
		return nil, err
	}
	if in.TransactionID == "" && in.ReferenceNumber == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id or reference number is required")
	}

	var card Node
	if !e.paymentType.IsACH() {
		var err error
		if card, _, err = e.cards(OpStatus, in.Instrument); err != nil {
			return nil, err
		}
	}

	return e.exchange(ctx, opTransactionQuery, blocks{
		card: card,
		extra: []Field{F("Parameters", Node{
			F("TransactionID", in.TransactionID),
			F("ReferenceNumber", in.ReferenceNumber),
		})},
	})
}

// exchange encodes the request, performs one HTTP round trip and evaluates
// the response. The only errors returned are failures to build the request;
// transport failures are reported through the Result.
func (e *engine) exchange(ctx context.Context, op operation, b blocks) (*ports.Result, error) {
	start := time.Now()

	body, err := EncodeXML(op.root, op.namespace, e.envelope(op, b))
	if err != nil {
		return nil, err
	}
	e.AddRequest(maskSensitive(string(body)))

	target := e.endpoints.url(op.service)
	req, err := e.wire.newRequest(ctx, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	e.logger.Debug("Sending gateway request",
		ports.String("gateway", e.name),
		ports.String("operation", op.name),
		ports.String("root", op.root),
		ports.String("endpoint", target),
		ports.String("request_body", e.LastRequest()),
	)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return e.transportFailure(op, classifyDoError(err), start), nil
	}
	defer resp.Body.Close()

	e.httpCode = resp.StatusCode
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return e.transportFailure(op, &TransportError{Class: TransportGeneric, StatusCode: resp.StatusCode, Err: err}, start), nil
	}
	e.AddResponse(string(respBody))

	if te := classifyStatus(resp.StatusCode); te != nil {
		return e.transportFailure(op, te, start), nil
	}

	tree, err := e.wire.decode(respBody)
	if err != nil {
		return e.transportFailure(op, &TransportError{Class: TransportGeneric, StatusCode: resp.StatusCode, Err: err}, start), nil
	}

	return e.evaluate(op, tree, start), nil
}

// evaluate populates the result state from a decoded response
func (e *engine) evaluate(op operation, tree map[string]any, start time.Time) *ports.Result {
	e.parsed = tree
	e.responseCode = lookupString(tree, "Response", "ExpressResponseCode")
	message := lookupString(tree, "Response", "ExpressResponseMessage")

	e.transactionID = lookupString(tree, "Response", "Transaction", "TransactionID")
	if e.transactionID == "" {
		e.transactionID = lookupString(tree, "Response", "Transaction", "ReferenceNumber")
	}

	switch op.name {
	case OpStatus:
		e.responseData = lookupMap(tree, "Response", "ReportingData", "Items", "Item")
		e.paymentStatus = paymentStatusFor(lookupString(e.responseData, "TransactionStatusCode"))
	case OpGetPaymentAccount:
		e.responseData = lookupMap(tree, "Response", "QueryData", "Items", "Item")
	}

	result := &ports.Result{
		Outcome:       ports.OutcomeSuccess,
		TransactionID: e.transactionID,
		ResponseCode:  e.responseCode,
		Message:       message,
		PaymentStatus: e.paymentStatus,
		Data:          e.responseData,
		HTTPCode:      e.httpCode,
	}

	if !e.IsSuccessful() {
		e.errorMessage = message
		reason := mapDeclineReasonString(e.responseCode, e.logger, e.name)
		e.declineReason = &reason
		result.Outcome = ports.OutcomeDecline
		result.DeclineReason = e.declineReason
		observability.RecordGatewayDecline(e.name, string(reason))
	}

	elapsed := time.Since(start)
	observability.RecordGatewayExchange(e.name, op.name, string(e.paymentType), string(result.Outcome), elapsed.Seconds())

	fields := []ports.Field{
		ports.String("gateway", e.name),
		ports.String("operation", op.name),
		ports.String("payment_type", string(e.paymentType)),
		ports.Int("http_code", e.httpCode),
		ports.String("response_code", e.responseCode),
		ports.String("transaction_id", e.transactionID),
		ports.Int("elapsed_ms", int(elapsed.Milliseconds())),
	}
	if result.DeclineReason != nil {
		fields = append(fields,
			ports.String("decline_reason", string(*result.DeclineReason)),
			ports.String("message", message),
		)
	}
	e.logger.Info("Gateway exchange completed", fields...)

	return result
}

// transportFailure records a failed exchange. The response code is left unset.
func (e *engine) transportFailure(op operation, te *TransportError, start time.Time) *ports.Result {
	e.errorMessage = te.Error()

	elapsed := time.Since(start)
	observability.RecordTransportFailure(e.name, string(te.Class))
	observability.RecordGatewayExchange(e.name, op.name, string(e.paymentType), string(ports.OutcomeTransportFailure), elapsed.Seconds())

	e.logger.Error("Gateway transport failure",
		ports.String("gateway", e.name),
		ports.String("operation", op.name),
		ports.String("class", string(te.Class)),
		ports.Int("http_code", e.httpCode),
		ports.Int("elapsed_ms", int(elapsed.Milliseconds())),
		ports.Err(te),
	)

	return &ports.Result{
		Outcome:  ports.OutcomeTransportFailure,
		Message:  e.errorMessage,
		HTTPCode: e.httpCode,
	}
}

// paymentStatusFor maps a TransactionStatusCode. Codes other than returned
// and settled mean no status change.
func paymentStatusFor(code string) *models.PaymentStatus {
	var status models.PaymentStatus
	switch code {
	case transactionStatusReturned:
		status = models.PaymentStatusReturned
	case transactionStatusSettled:
		status = models.PaymentStatusSettled
	default:
		return nil
	}
	return &status
}

// directWire posts XML straight to the vendor endpoint
type directWire struct{}

func (directWire) newRequest(ctx context.Context, target string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	return req, nil
}

func (directWire) decode(body []byte) (map[string]any, error) {
	return DecodeXML(body)
}
