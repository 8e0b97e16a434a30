package ports

import (
	"context"

	"github.com/kevin07696/express-gateway/internal/domain/models"
)

// Decryptor reverses the at-rest encryption applied to sensitive fields
// such as raw bank account numbers
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// AmountFormatter renders a minor-unit amount as the decimal string the
// gateway wire protocol expects (e.g. 1043 USD -> "10.43")
type AmountFormatter interface {
	Format(amount int64, currency string) (string, error)
}

// CredentialStore resolves gateway credentials for a gateway and environment
type CredentialStore interface {
	GetCredentials(ctx context.Context, gateway, environment string) (*models.Credentials, error)
}
