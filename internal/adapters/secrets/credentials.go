package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kevin07696/express-gateway/internal/domain/models"
)

// ErrCredentialsNotFound is returned when no credential set exists at the path
var ErrCredentialsNotFound = errors.New("credentials not found")

// CredentialWriter is implemented by stores that can provision credentials
type CredentialWriter interface {
	PutCredentials(ctx context.Context, gateway, environment string, creds *models.Credentials) error
}

// CredentialPath builds the store path for a gateway and environment.
// Format: {prefix}/{gateway}/{environment}
func CredentialPath(prefix, gateway, environment string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, gateway, environment)
	return strings.Join(parts, "/")
}

// Flat key names used by key/value stores such as Vault
const (
	keyAccountID          = "account_id"
	keyAccountToken       = "account_token"
	keyAcceptorID         = "acceptor_id"
	keyTerminalID         = "terminal_id"
	keyTokenServiceURL    = "token_service_url"
	keyTokenServiceAPIKey = "token_service_api_key"
	keyTokenServiceID     = "token_service_id"
)

// credentialsFromMap reads a flat key/value secret into Credentials.
// Any token_service_* key enables the tokenization proxy.
func credentialsFromMap(data map[string]interface{}) (*models.Credentials, error) {
	str := func(key string) (string, error) {
		v, ok := data[key]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("secret key %s is %T, expected string", key, v)
		}
		return s, nil
	}

	creds := &models.Credentials{}
	targets := []struct {
		key string
		dst *string
	}{
		{keyAccountID, &creds.AccountID},
		{keyAccountToken, &creds.AccountToken},
		{keyAcceptorID, &creds.AcceptorID},
		{keyTerminalID, &creds.TerminalID},
	}
	for _, t := range targets {
		v, err := str(t.key)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}

	var ts models.TokenServiceCredentials
	for key, dst := range map[string]*string{
		keyTokenServiceURL:    &ts.URL,
		keyTokenServiceAPIKey: &ts.APIKey,
		keyTokenServiceID:     &ts.ID,
	} {
		v, err := str(key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	if ts.URL != "" || ts.APIKey != "" || ts.ID != "" {
		creds.TokenService = &ts
	}

	return creds, nil
}

// credentialsToMap is the inverse of credentialsFromMap
func credentialsToMap(creds *models.Credentials) map[string]interface{} {
	data := map[string]interface{}{
		keyAccountID:    creds.AccountID,
		keyAccountToken: creds.AccountToken,
		keyAcceptorID:   creds.AcceptorID,
		keyTerminalID:   creds.TerminalID,
	}
	if ts := creds.TokenService; ts != nil {
		data[keyTokenServiceURL] = ts.URL
		data[keyTokenServiceAPIKey] = ts.APIKey
		data[keyTokenServiceID] = ts.ID
	}
	return data
}
