package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for the HashiCorp Vault store
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token authentication
	Token string

	// AppRole authentication
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV mount path (default: "secret")
	MountPath string

	// KV engine version: "v1" or "v2" (default: "v2")
	KVVersion string

	// Path prefix under the mount: {prefix}/{gateway}/{environment}
	Prefix string

	// Skip TLS verification (development only)
	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:    address,
		AuthMethod: "token",
		MountPath:  "secret",
		KVVersion:  "v2",
	}
}

// VaultCredentialStore reads gateway credentials from a KV secrets engine
type VaultCredentialStore struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
}

var (
	_ ports.CredentialStore = (*VaultCredentialStore)(nil)
	_ CredentialWriter      = (*VaultCredentialStore)(nil)
)

// NewVaultCredentialStore creates an authenticated Vault-backed store
func NewVaultCredentialStore(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (*VaultCredentialStore, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}
	if cfg.KVVersion == "" {
		cfg.KVVersion = "v2"
	}

	logger.Info("Vault credential store initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &VaultCredentialStore{client: client, config: cfg, logger: logger}, nil
}

// authenticateVault handles authentication with Vault
func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token", "":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}

		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// secretPath maps a logical credential path to the KV API path
func (s *VaultCredentialStore) secretPath(gateway, environment string) string {
	path := CredentialPath(s.config.Prefix, gateway, environment)
	if s.config.KVVersion == "v1" {
		return fmt.Sprintf("%s/%s", s.config.MountPath, path)
	}
	return fmt.Sprintf("%s/data/%s", s.config.MountPath, path)
}

// GetCredentials reads the credential secret for a gateway and environment
func (s *VaultCredentialStore) GetCredentials(ctx context.Context, gateway, environment string) (*models.Credentials, error) {
	fullPath := s.secretPath(gateway, environment)

	startTime := time.Now()
	secret, err := s.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		s.logger.Error("Failed to read credentials from Vault",
			zap.String("path", fullPath),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret %s: %w", fullPath, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, fullPath)
	}

	data := secret.Data
	if s.config.KVVersion != "v1" {
		// KV v2 nests the payload under "data"; a deleted version has nil data
		inner, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, fullPath)
		}
		data = inner
	}

	creds, err := credentialsFromMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", fullPath, err)
	}

	s.logger.Debug("Credentials retrieved from Vault",
		zap.String("path", fullPath),
		zap.Duration("duration", time.Since(startTime)),
	)

	return creds, nil
}

// PutCredentials writes a new secret version
func (s *VaultCredentialStore) PutCredentials(ctx context.Context, gateway, environment string, creds *models.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are required")
	}
	fullPath := s.secretPath(gateway, environment)

	data := credentialsToMap(creds)
	if s.config.KVVersion != "v1" {
		data = map[string]interface{}{"data": data}
	}

	if _, err := s.client.Logical().WriteWithContext(ctx, fullPath, data); err != nil {
		return fmt.Errorf("failed to write secret %s: %w", fullPath, err)
	}

	s.logger.Info("Credentials written to Vault", zap.String("path", fullPath))
	return nil
}
