package ports

import (
	"errors"
	"testing"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	pkgerrors "github.com/kevin07696/express-gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Completed(t *testing.T) {
	tests := []struct {
		outcome       Outcome
		wantCompleted bool
		wantSuccess   bool
	}{
		{OutcomeSuccess, true, true},
		{OutcomeDecline, true, false},
		{OutcomeTransportFailure, false, false},
		{OutcomeNotPerformed, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			r := &Result{Outcome: tt.outcome}
			assert.Equal(t, tt.wantCompleted, r.Completed())
			assert.Equal(t, tt.wantSuccess, r.Successful())
		})
	}

	var nilResult *Result
	assert.False(t, nilResult.Completed())
	assert.False(t, nilResult.Successful())
	assert.NoError(t, nilResult.Err())
}

func TestResult_Err(t *testing.T) {
	t.Run("success has no error", func(t *testing.T) {
		assert.NoError(t, (&Result{Outcome: OutcomeSuccess}).Err())
	})

	t.Run("decline maps category", func(t *testing.T) {
		reason := models.DeclineReasonInsufficientFunds
		r := &Result{
			Outcome:       OutcomeDecline,
			ResponseCode:  "30",
			Message:       "Balance not available",
			DeclineReason: &reason,
		}

		var paymentErr *pkgerrors.PaymentError
		require.True(t, errors.As(r.Err(), &paymentErr))
		assert.Equal(t, "30", paymentErr.Code)
		assert.Equal(t, pkgerrors.CategoryInsufficientFunds, paymentErr.Category)
		assert.Equal(t, "Balance not available", paymentErr.GatewayMessage)
		assert.False(t, paymentErr.IsRetriable)
	})

	t.Run("transport failure is retriable network error", func(t *testing.T) {
		r := &Result{Outcome: OutcomeTransportFailure, Message: "dial tcp: connection refused"}

		var paymentErr *pkgerrors.PaymentError
		require.True(t, errors.As(r.Err(), &paymentErr))
		assert.Equal(t, pkgerrors.CategoryNetworkError, paymentErr.Category)
		assert.True(t, paymentErr.IsRetriable)
	})
}
