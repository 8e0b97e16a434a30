package express

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizedClient_AuthCapture_RoutesThroughProxy(t *testing.T) {
	stub := newVendorStub(t, approve("CreditCardSale", "291916655"))
	client, _ := newTestTokenizedClient(t, stub)

	result, err := client.AuthCapture(context.Background(), cardInput(1043))
	require.NoError(t, err)
	assert.True(t, result.Successful())
	assert.Equal(t, "291916655", client.TransactionID())

	req := stub.lastCall(t)
	assert.Equal(t, "/proxy", req.Path)
	assert.Equal(t, "https://certtransaction.elementexpress.com/", req.Header.Get(HeaderProxyTargetURL))
	assert.Equal(t, "4311038889209736", req.Header.Get(HeaderProxyTokenID))
	assert.Equal(t, "proxy-api-key", req.Header.Get(HeaderProxyAPIKey))

	assert.Equal(t, "CreditCardSale", req.Root.Local)
	assert.Equal(t, NamespaceTransaction, req.Root.Space)
	assert.Equal(t, "10.43", lookupString(req.Tree, "Transaction", "TransactionAmount"))
	assert.Equal(t, "{{{5A1B2C3D-4E5F-6789-ABCD-EF0123456789}}}", lookupString(req.Tree, "Card", "CardNumber"))
	assert.Equal(t, "03", lookupString(req.Tree, "Card", "ExpirationMonth"))
	assert.Equal(t, "27", lookupString(req.Tree, "Card", "ExpirationYear"))
	assert.Nil(t, lookupMap(req.Tree, "PaymentAccount"))

	// The placeholder is not sensitive and stays readable in the stored request
	assert.True(t, containsAll(client.LastRequest(), "{{{5A1B2C3D-4E5F-6789-ABCD-EF0123456789}}}", "<TransactionAmount>10.43</TransactionAmount>"))
}

func TestTokenizedClient_ProxyJSONError(t *testing.T) {
	stub := newVendorStub(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"success":false,"error":"TokenRequestorId not found","referenceNumber":"abc"}`
	})
	client, _ := newTestTokenizedClient(t, stub)

	result, err := client.AuthCapture(context.Background(), cardInput(1043))
	require.NoError(t, err)

	assert.Equal(t, ports.OutcomeDecline, result.Outcome)
	assert.False(t, client.IsSuccessful())
	assert.Equal(t, "103", client.ResponseCode())
	assert.Equal(t, "Tokenization proxy error: TokenRequestorId not found", client.ErrorMessage())
	assert.Equal(t, "abc", client.TransactionID())
	require.NotNil(t, client.DeclineReason())
	assert.Equal(t, models.DeclineReasonInvalid, *client.DeclineReason())

	proxy, ok := client.ParsedResponse()["Proxy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", proxy["referenceNumber"])
}

func TestTokenizedClient_ProxyJSONErrorFallsBackToMessage(t *testing.T) {
	stub := newVendorStub(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"success":false,"error":"","message":"Invalid API key","referenceNumber":"r-2"}`
	})
	client, _ := newTestTokenizedClient(t, stub)

	_, err := client.Authorize(context.Background(), cardInput(100))
	require.NoError(t, err)
	assert.Equal(t, "Tokenization proxy error: Invalid API key", client.ErrorMessage())
}

func TestTokenizedClient_ProxyJSONOnServerErrorIsTransportFailure(t *testing.T) {
	stub := newVendorStub(t, func(recordedRequest) (int, string) {
		return http.StatusBadGateway, `{"success":false,"error":"upstream unavailable"}`
	})
	client, _ := newTestTokenizedClient(t, stub)

	result, err := client.AuthCapture(context.Background(), cardInput(100))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeTransportFailure, result.Outcome)
	assert.Equal(t, "server error: 502 Bad Gateway", client.ErrorMessage())
	assert.Empty(t, client.ResponseCode())
}

func TestTokenizedClient_MissingExpirationFailsFast(t *testing.T) {
	stub := newVendorStub(t, approve("CreditCardSale", "1"))
	client, _ := newTestTokenizedClient(t, stub)
	ctx := context.Background()

	noYear := cardInput(100)
	noYear.TransactionID = "291916655"
	noYear.Instrument = models.Card{Token: "tok", ExpirationMonth: 12}

	storedAccount := cardInput(100)
	storedAccount.TransactionID = "291916655"
	storedAccount.Instrument = models.StoredAccount{PaymentAccountID: "PA-1"}

	ops := map[string]func(in *models.OperationInput) (*ports.Result, error){
		"authorize":    func(in *models.OperationInput) (*ports.Result, error) { return client.Authorize(ctx, in) },
		"capture":      func(in *models.OperationInput) (*ports.Result, error) { return client.Capture(ctx, in) },
		"auth_capture": func(in *models.OperationInput) (*ports.Result, error) { return client.AuthCapture(ctx, in) },
		"cancel":       func(in *models.OperationInput) (*ports.Result, error) { return client.Cancel(ctx, in) },
		"credit":       func(in *models.OperationInput) (*ports.Result, error) { return client.Credit(ctx, in) },
		"status":       func(in *models.OperationInput) (*ports.Result, error) { return client.Status(ctx, in) },
	}

	for name, op := range ops {
		for _, in := range []*models.OperationInput{noYear, storedAccount} {
			t.Run(name, func(t *testing.T) {
				result, err := op(in)
				assert.Nil(t, result)
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.ErrMissingExpiration)

				var validationErr *pkgerrors.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, "expiration", validationErr.Field)
			})
		}
	}

	assert.Empty(t, stub.calls())
}

func TestTokenizedClient_CardFollowUps(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		call     func(c *TokenizedClient, in *models.OperationInput) (*ports.Result, error)
		wantCard bool
		target   string
	}{
		{"capture", "CreditCardAuthorizationCompletion", func(c *TokenizedClient, in *models.OperationInput) (*ports.Result, error) {
			return c.Capture(context.Background(), in)
		}, false, "https://certtransaction.elementexpress.com/"},
		{"cancel", "CreditCardReversal", func(c *TokenizedClient, in *models.OperationInput) (*ports.Result, error) {
			return c.Cancel(context.Background(), in)
		}, false, "https://certtransaction.elementexpress.com/"},
		{"credit", "CreditCardReturn", func(c *TokenizedClient, in *models.OperationInput) (*ports.Result, error) {
			return c.Credit(context.Background(), in)
		}, true, "https://certtransaction.elementexpress.com/"},
		{"status", "TransactionQuery", func(c *TokenizedClient, in *models.OperationInput) (*ports.Result, error) {
			return c.Status(context.Background(), in)
		}, true, "https://certreporting.elementexpress.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newVendorStub(t, approve(tt.root, "291916700"))
			client, _ := newTestTokenizedClient(t, stub)

			in := cardInput(700)
			in.TransactionID = "291916655"

			result, err := tt.call(client, in)
			require.NoError(t, err)
			assert.True(t, result.Successful())

			req := stub.lastCall(t)
			assert.Equal(t, "/proxy", req.Path)
			assert.Equal(t, tt.root, req.Root.Local)
			assert.Equal(t, tt.target, req.Header.Get(HeaderProxyTargetURL))
			if tt.wantCard {
				assert.Equal(t, "{{{5A1B2C3D-4E5F-6789-ABCD-EF0123456789}}}", lookupString(req.Tree, "Card", "CardNumber"))
			} else {
				assert.Nil(t, lookupMap(req.Tree, "Card"))
			}
		})
	}
}

func TestTokenizedClient_ACH(t *testing.T) {
	t.Run("raw account sale", func(t *testing.T) {
		stub := newVendorStub(t, approve("CheckSale", "ACH-1"))
		client, deps := newTestTokenizedClient(t, stub)

		result, err := client.AuthCapture(context.Background(), achRawInput(5000))
		require.NoError(t, err)
		assert.True(t, result.Successful())

		req := stub.lastCall(t)
		assert.Equal(t, "CheckSale", req.Root.Local)
		assert.Equal(t, "000123456789", lookupString(req.Tree, "DemandDepositAccount", "AccountNumber"))
		assert.Nil(t, lookupMap(req.Tree, "Card"))
		assert.Len(t, deps.decryptor.Calls, 1)
	})

	t.Run("status omits card", func(t *testing.T) {
		stub := newVendorStub(t, approve("TransactionQuery", ""))
		client, _ := newTestTokenizedClient(t, stub)

		in := achRawInput(0)
		in.TransactionID = "291916655"
		_, err := client.Status(context.Background(), in)
		require.NoError(t, err)
		assert.Nil(t, lookupMap(stub.lastCall(t).Tree, "Card"))
	})

	t.Run("authorize and capture unsupported", func(t *testing.T) {
		stub := newVendorStub(t, approve("CheckSale", "ACH-1"))
		client, deps := newTestTokenizedClient(t, stub)

		_, err := client.Authorize(context.Background(), achRawInput(100))
		assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

		_, err = client.Capture(context.Background(), achRawInput(100))
		assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

		assert.Empty(t, stub.calls())
		assert.Empty(t, deps.decryptor.Calls)
	})
}

func TestTokenizedClient_UnavailableOperationsMakeNoCall(t *testing.T) {
	stub := newVendorStub(t, approve("PaymentAccountQuery", ""))
	client, _ := newTestTokenizedClient(t, stub)
	ctx := context.Background()

	account, err := client.GetPaymentAccount(ctx, "PA-1", "ref")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

	result, err := client.UpdatePaymentAccount(ctx, "PA-1", &models.PaymentAccount{PaymentType: models.PaymentTypeCC})
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeNotPerformed, result.Outcome)
	assert.False(t, result.Completed())
	assert.False(t, client.IsSuccessful())

	setup, err := client.CreateTransactionSetup(ctx, &models.TransactionSetupInput{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Nil(t, setup)

	assert.Equal(t, "https://certtransaction.hostedpayments.com/?TransactionSetupID=s-1", client.GenerateTransactionSetupURL("s-1"))
	assert.Empty(t, stub.calls())
	assert.Empty(t, client.Requests())
}

func TestNewTokenizedClient_RequiresProxy(t *testing.T) {
	_, err := NewTokenizedClient(DefaultClientConfig(EnvironmentSandbox), testCreds, nil, nil, nil, nil)
	assert.Error(t, err)

	creds := tokenizedCreds("")
	_, err = NewTokenizedClient(DefaultClientConfig(EnvironmentSandbox), creds, nil, nil, nil, nil)
	assert.Error(t, err)

	cfg := DefaultClientConfig(EnvironmentSandbox)
	cfg.ProxyURL = "https://proxy.example.com/"
	client, err := NewTokenizedClient(cfg, creds, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/", client.wire.(proxyWire).url)
}
