package express

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/pkg/money"
	"github.com/kevin07696/express-gateway/test/mocks"
	"github.com/stretchr/testify/require"
)

var testCreds = models.Credentials{
	AccountID:    "1013963",
	AccountToken: "683EED8A1A4D9F2E6F3D4A1B0C9E8D7F6A5B4C3D2E1F",
	AcceptorID:   "3928907",
	TerminalID:   "0001",
}

func tokenizedCreds(proxyURL string) models.Credentials {
	creds := testCreds
	creds.TokenService = &models.TokenServiceCredentials{
		URL:    proxyURL,
		APIKey: "proxy-api-key",
		ID:     "4311038889209736",
	}
	return creds
}

// recordedRequest is one request as seen by the vendor stub
type recordedRequest struct {
	Path   string
	Header http.Header
	Body   string
	Root   xml.Name
	Tree   map[string]any
}

// vendorStub is an httptest server standing in for the vendor or the proxy
type vendorStub struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newVendorStub(t *testing.T, respond func(req recordedRequest) (int, string)) *vendorStub {
	t.Helper()
	stub := &vendorStub{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec := recordedRequest{
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
			Root:   rootOf(body),
		}
		rec.Tree, _ = DecodeXML(body)

		stub.mu.Lock()
		stub.requests = append(stub.requests, rec)
		stub.mu.Unlock()

		status, resp := respond(rec)
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(stub.Close)
	return stub
}

func (s *vendorStub) calls() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func (s *vendorStub) lastCall(t *testing.T) recordedRequest {
	t.Helper()
	calls := s.calls()
	require.NotEmpty(t, calls, "expected the stub to receive a request")
	return calls[len(calls)-1]
}

// stubConfig points every vendor service at the stub
func stubConfig(baseURL string) ClientConfig {
	cfg := DefaultClientConfig(EnvironmentSandbox)
	cfg.Endpoints = Endpoints{
		Transaction: baseURL + "/transaction/",
		Reporting:   baseURL + "/reporting/",
		Services:    baseURL + "/services/",
	}
	return cfg
}

type testDeps struct {
	logger    *mocks.MockLogger
	decryptor *mocks.MockDecryptor
}

func newTestDeps() testDeps {
	return testDeps{
		logger:    mocks.NewMockLogger(),
		decryptor: mocks.NewMockDecryptor(),
	}
}

func newTestDirectClient(t *testing.T, stub *vendorStub) (*DirectClient, testDeps) {
	t.Helper()
	deps := newTestDeps()
	client := NewDirectClient(stubConfig(stub.URL), testCreds, stub.Client(), deps.decryptor, money.NewFormatter(), deps.logger)
	return client, deps
}

func newTestTokenizedClient(t *testing.T, stub *vendorStub) (*TokenizedClient, testDeps) {
	t.Helper()
	deps := newTestDeps()
	// Vendor endpoints are only named in the TX_URL header; the proxy is the stub
	cfg := DefaultClientConfig(EnvironmentSandbox)
	client, err := NewTokenizedClient(cfg, tokenizedCreds(stub.URL+"/proxy"), stub.Client(), deps.decryptor, money.NewFormatter(), deps.logger)
	require.NoError(t, err)
	return client, deps
}

// vendorResponse renders a vendor response document. inner is placed inside
// the Response element after the code and message.
func vendorResponse(root, code, message, inner string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<%[1]sResponse xmlns="https://transaction.elementexpress.com">
  <Response>
    <ExpressResponseCode>%[2]s</ExpressResponseCode>
    <ExpressResponseMessage>%[3]s</ExpressResponseMessage>
    %[4]s
  </Response>
</%[1]sResponse>`, root, code, message, inner)
}

func transactionXML(id string) string {
	return "<Transaction><TransactionID>" + id + "</TransactionID></Transaction>"
}

func approve(root, transactionID string) func(recordedRequest) (int, string) {
	return func(recordedRequest) (int, string) {
		return http.StatusOK, vendorResponse(root, "0", "Approved", transactionXML(transactionID))
	}
}

func rootOf(body []byte) xml.Name {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.Name{}
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name
		}
	}
}

func cardInput(amount int64) *models.OperationInput {
	return &models.OperationInput{
		Amount:          amount,
		Currency:        "USD",
		ReferenceNumber: "ref-20261016-0001",
		TicketNumber:    "INV-1001",
		PaymentType:     models.PaymentTypeCC,
		Instrument: models.Card{
			Token:           "5A1B2C3D-4E5F-6789-ABCD-EF0123456789",
			ExpirationMonth: 3,
			ExpirationYear:  2027,
		},
		Billing: models.BillingInfo{
			Name:       "Jane Doe",
			Email:      "jane@example.com",
			Address1:   "1 Main St",
			City:       "Wilmington",
			State:      "DE",
			PostalCode: "19801",
		},
	}
}

func achRawInput(amount int64) *models.OperationInput {
	return &models.OperationInput{
		Amount:          amount,
		Currency:        "USD",
		ReferenceNumber: "ach-ref-1",
		PaymentType:     models.PaymentTypeACH,
		Instrument: models.AchRaw{
			EncryptedAccountNumber: "enc:000123456789",
			RoutingNumber:          "021000021",
			AccountType:            models.AccountTypePersonalSavings,
		},
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
