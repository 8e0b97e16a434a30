package express

import "github.com/kevin07696/express-gateway/internal/domain/models"

// ResultState holds the outcome of the most recent operation on one client.
// Request and response bodies accumulate across operations so a caller can
// inspect every exchange the instance made.
//
// Not safe for concurrent use.
type ResultState struct {
	requests  []string
	responses []string

	paymentType   models.PaymentType
	httpCode      int
	errorMessage  string
	transactionID string
	responseCode  string
	responseData  map[string]any
	parsed        map[string]any
	declineReason *models.DeclineReason
	paymentStatus *models.PaymentStatus
}

// Reset clears the per-operation fields. Request and response history is kept.
func (s *ResultState) Reset() {
	s.paymentType = ""
	s.httpCode = 0
	s.errorMessage = ""
	s.transactionID = ""
	s.responseCode = ""
	s.responseData = nil
	s.parsed = nil
	s.declineReason = nil
	s.paymentStatus = nil
}

// AddRequest appends a (masked) request body
func (s *ResultState) AddRequest(body string) {
	s.requests = append(s.requests, body)
}

// AddResponse appends a raw response body
func (s *ResultState) AddResponse(body string) {
	s.responses = append(s.responses, body)
}

// IsSuccessful reports whether the last vendor response code was "0".
// HTTP 200 alone is not success.
func (s *ResultState) IsSuccessful() bool {
	return s.responseCode == ResponseCodeApproved
}

func (s *ResultState) TransactionID() string { return s.transactionID }
func (s *ResultState) ResponseCode() string  { return s.responseCode }
func (s *ResultState) ErrorMessage() string  { return s.errorMessage }
func (s *ResultState) HTTPCode() int         { return s.httpCode }

// PaymentType returns the payment type of the last operation
func (s *ResultState) PaymentType() models.PaymentType { return s.paymentType }

// ResponseData returns the query payload of the last status or account lookup
func (s *ResultState) ResponseData() map[string]any { return s.responseData }

// ParsedResponse returns the full decoded body of the last response
func (s *ResultState) ParsedResponse() map[string]any { return s.parsed }

// DeclineReason returns the canonical reason for the last decline, or nil
// when the operation succeeded or never reached the vendor
func (s *ResultState) DeclineReason() *models.DeclineReason {
	if s.IsSuccessful() {
		return nil
	}
	return s.declineReason
}

// PaymentStatus returns the asynchronous status discovered by the last status query
func (s *ResultState) PaymentStatus() *models.PaymentStatus { return s.paymentStatus }

// Requests returns every request body sent by this instance, oldest first
func (s *ResultState) Requests() []string {
	return append([]string(nil), s.requests...)
}

// Responses returns every response body received by this instance, oldest first
func (s *ResultState) Responses() []string {
	return append([]string(nil), s.responses...)
}

// LastRequest returns the most recent request body, or ""
func (s *ResultState) LastRequest() string {
	if len(s.requests) == 0 {
		return ""
	}
	return s.requests[len(s.requests)-1]
}

// LastResponse returns the most recent response body, or ""
func (s *ResultState) LastResponse() string {
	if len(s.responses) == 0 {
		return ""
	}
	return s.responses[len(s.responses)-1]
}
