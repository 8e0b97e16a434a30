package express

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
)

// TokenizedGatewayName labels the proxy client in logs and metrics
const TokenizedGatewayName = "express-tokenized"

// Proxy request headers
const (
	HeaderProxyTargetURL = "TX_URL"
	HeaderProxyTokenID   = "TX_TokenExID"
	HeaderProxyAPIKey    = "TX_APIKey"
)

// TokenizedClient routes every vendor call through a tokenization proxy that
// replaces the card number placeholder with the real card number. The proxy
// never stores instruments, so account lookup, account update and hosted
// page setup are not available.
//
// A TokenizedClient keeps the state of its most recent operation and must not
// be shared between goroutines.
type TokenizedClient struct {
	engine
}

var _ ports.Gateway = (*TokenizedClient)(nil)

// NewTokenizedClient creates a proxy client. creds.TokenService must be set.
func NewTokenizedClient(
	cfg ClientConfig,
	creds models.Credentials,
	httpClient ports.HTTPClient,
	decryptor ports.Decryptor,
	formatter ports.AmountFormatter,
	logger ports.Logger,
) (*TokenizedClient, error) {
	if creds.TokenService == nil {
		return nil, fmt.Errorf("%s: token service credentials are required", TokenizedGatewayName)
	}
	proxyURL := creds.TokenService.URL
	if proxyURL == "" {
		proxyURL = cfg.ProxyURL
	}
	if proxyURL == "" {
		return nil, fmt.Errorf("%s: token service URL is required", TokenizedGatewayName)
	}

	return &TokenizedClient{engine: engine{
		name:       TokenizedGatewayName,
		creds:      creds,
		cfg:        cfg,
		endpoints:  cfg.ResolvedEndpoints(),
		httpClient: httpClient,
		formatter:  formatter,
		decryptor:  decryptor,
		logger:     logger,
		wire: proxyWire{
			url:     proxyURL,
			tokenID: creds.TokenService.ID,
			apiKey:  creds.TokenService.APIKey,
		},
		cards: tokenizedCards,
	}}, nil
}

// tokenizedCards requires a card with expiration on every card operation.
// Capture and cancel reference the prior transaction, so the card is
// validated but not sent.
func tokenizedCards(op string, inst models.PaymentInstrument) (Node, Node, error) {
	card, err := tokenizedCardBlock(inst)
	if err != nil {
		return nil, nil, err
	}
	switch op {
	case OpCapture, OpCancel:
		return nil, nil, nil
	}
	return card, nil, nil
}

// GetPaymentAccount is not supported: the proxy holds no stored accounts
func (c *TokenizedClient) GetPaymentAccount(ctx context.Context, accountID, referenceNumber string) (*models.PaymentAccount, error) {
	c.Reset()
	return nil, c.unsupported(OpGetPaymentAccount, "tokenized accounts are not stored at the vendor")
}

// UpdatePaymentAccount is a no-op on the proxy client. No call is made and
// the result is not completed.
func (c *TokenizedClient) UpdatePaymentAccount(ctx context.Context, accountID string, account *models.PaymentAccount) (*ports.Result, error) {
	c.Reset()
	return &ports.Result{Outcome: ports.OutcomeNotPerformed}, nil
}

// CreateTransactionSetup is not offered through the proxy and returns nil
// without a call
func (c *TokenizedClient) CreateTransactionSetup(ctx context.Context, in *models.TransactionSetupInput) (*models.TransactionSetup, error) {
	c.Reset()
	return nil, nil
}

// proxyWire posts every request to the proxy and names the vendor endpoint
// in a header
type proxyWire struct {
	url     string
	tokenID string
	apiKey  string
}

func (w proxyWire) newRequest(ctx context.Context, target string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	// The proxy matches these names exactly, so bypass canonicalization
	req.Header[HeaderProxyTargetURL] = []string{target}
	req.Header[HeaderProxyTokenID] = []string{w.tokenID}
	req.Header[HeaderProxyAPIKey] = []string{w.apiKey}
	return req, nil
}

// decode parses vendor XML, or reshapes a proxy JSON failure into the vendor
// response shape so evaluation is uniform
func (w proxyWire) decode(body []byte) (map[string]any, error) {
	if !looksLikeJSON(body) {
		return DecodeXML(body)
	}

	proxy, err := DecodeJSON(body)
	if err != nil {
		return nil, err
	}
	return reshapeProxyError(proxy), nil
}

func reshapeProxyError(proxy map[string]any) map[string]any {
	detail := lookupString(proxy, "error")
	if detail == "" {
		detail = lookupString(proxy, "message")
	}

	return map[string]any{
		"Response": map[string]any{
			"ExpressResponseCode":    ResponseCodeProxyError,
			"ExpressResponseMessage": "Tokenization proxy error: " + detail,
			"Transaction": map[string]any{
				"ReferenceNumber": lookupString(proxy, "referenceNumber"),
			},
		},
		"Proxy": proxy,
	}
}
