package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountType_WireCodes(t *testing.T) {
	tests := []struct {
		accountType AccountType
		wantDDA     string
		wantCheck   string
	}{
		{AccountTypePersonalChecking, "0", "0"},
		{AccountTypePersonalSavings, "1", "0"},
		{AccountTypeBusinessChecking, "0", "1"},
		{AccountTypeBusinessSavings, "1", "1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.True(t, tt.accountType.Valid())
			assert.Equal(t, tt.wantDDA, tt.accountType.DDAAccountType())
			assert.Equal(t, tt.wantCheck, tt.accountType.CheckType())
			assert.Equal(t, tt.accountType, AccountTypeFromCodes(tt.wantDDA, tt.wantCheck))
		})
	}
}

func TestAccountType_Invalid(t *testing.T) {
	assert.False(t, AccountType("money_market").Valid())
	assert.False(t, AccountType("").Valid())
}

func TestCard_HasExpiration(t *testing.T) {
	assert.True(t, Card{Token: "tok", ExpirationMonth: 4, ExpirationYear: 2027}.HasExpiration())
	assert.False(t, Card{Token: "tok", ExpirationYear: 2027}.HasExpiration())
	assert.False(t, Card{Token: "tok", ExpirationMonth: 4}.HasExpiration())
}

func TestCredentials_Tokenized(t *testing.T) {
	assert.False(t, Credentials{AccountID: "1"}.Tokenized())
	assert.True(t, Credentials{TokenService: &TokenServiceCredentials{ID: "tx-1"}}.Tokenized())
	assert.True(t, Credentials{TokenService: &TokenServiceCredentials{URL: "https://proxy"}}.Tokenized())
}

func TestNewReferenceNumber(t *testing.T) {
	a := NewReferenceNumber()
	b := NewReferenceNumber()

	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}
