package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Credential sources
const (
	CredentialSourceAWS   = "aws"
	CredentialSourceVault = "vault"
	CredentialSourceLocal = "local"
)

// Config holds all application configuration
type Config struct {
	Gateway     GatewayConfig
	HTTP        HTTPConfig
	Credentials CredentialsConfig
	Crypto      CryptoConfig
	Logger      LoggerConfig
}

// GatewayConfig holds Express gateway configuration
type GatewayConfig struct {
	Environment string // sandbox or production

	ApplicationID      string
	ApplicationName    string
	ApplicationVersion string

	// Endpoint overrides; empty values fall back to the environment defaults
	TransactionURL string
	ReportingURL   string
	ServicesURL    string
	HostedPageURL  string

	TokenProxyURL         string // Used when credentials carry no proxy URL
	DisableDuplicateCheck bool
}

// HTTPConfig holds outbound HTTP timeouts
type HTTPConfig struct {
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// CredentialsConfig selects and configures the credential store
type CredentialsConfig struct {
	Source   string // aws, vault, local
	Prefix   string // Path prefix: {prefix}/{gateway}/{environment}
	CacheTTL time.Duration

	AWS   AWSConfig
	Vault VaultConfig
	Local LocalConfig
}

// AWSConfig holds AWS Secrets Manager settings
type AWSConfig struct {
	Region   string
	Profile  string
	Endpoint string // LocalStack or VPC endpoint
}

// VaultConfig holds HashiCorp Vault settings
type VaultConfig struct {
	Address       string
	AuthMethod    string // token or approle
	Token         string
	RoleID        string
	SecretID      string
	Namespace     string
	MountPath     string
	TLSSkipVerify bool
}

// LocalConfig holds the development credential file location
type LocalConfig struct {
	Path string
}

// CryptoConfig holds the key used to decrypt ACH account numbers
type CryptoConfig struct {
	FieldKey string // hex encoded 32 byte key
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	env := strings.ToLower(getEnv("GATEWAY_ENVIRONMENT", "sandbox"))

	cfg := &Config{
		Gateway: GatewayConfig{
			Environment:           env,
			ApplicationID:         getEnv("EXPRESS_APPLICATION_ID", "express-gateway"),
			ApplicationName:       getEnv("EXPRESS_APPLICATION_NAME", "express-gateway"),
			ApplicationVersion:    getEnv("EXPRESS_APPLICATION_VERSION", "1.0.0"),
			TransactionURL:        getEnv("EXPRESS_TRANSACTION_URL", ""),
			ReportingURL:          getEnv("EXPRESS_REPORTING_URL", ""),
			ServicesURL:           getEnv("EXPRESS_SERVICES_URL", ""),
			HostedPageURL:         getEnv("EXPRESS_HOSTED_PAGE_URL", ""),
			TokenProxyURL:         getEnv("TOKEN_PROXY_URL", ""),
			DisableDuplicateCheck: getEnvAsBool("GATEWAY_DISABLE_DUPLICATE_CHECK", env != "production"),
		},
		HTTP: HTTPConfig{
			ConnectTimeout: getEnvAsDuration("GATEWAY_CONNECT_TIMEOUT", 3*time.Second),
			Timeout:        getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),
		},
		Credentials: CredentialsConfig{
			Source:   strings.ToLower(getEnv("CREDENTIAL_SOURCE", CredentialSourceLocal)),
			Prefix:   getEnv("CREDENTIAL_PREFIX", "express-gateway"),
			CacheTTL: getEnvAsDuration("CREDENTIAL_CACHE_TTL", 5*time.Minute),
			AWS: AWSConfig{
				Region:   getEnv("AWS_REGION", "us-east-1"),
				Profile:  getEnv("AWS_PROFILE", ""),
				Endpoint: getEnv("AWS_SECRETS_ENDPOINT", ""),
			},
			Vault: VaultConfig{
				Address:       getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
				AuthMethod:    getEnv("VAULT_AUTH_METHOD", "token"),
				Token:         getEnv("VAULT_TOKEN", ""),
				RoleID:        getEnv("VAULT_ROLE_ID", ""),
				SecretID:      getEnv("VAULT_SECRET_ID", ""),
				Namespace:     getEnv("VAULT_NAMESPACE", ""),
				MountPath:     getEnv("VAULT_MOUNT_PATH", "secret"),
				TLSSkipVerify: getEnvAsBool("VAULT_SKIP_VERIFY", false),
			},
			Local: LocalConfig{
				Path: getEnv("CREDENTIALS_FILE", "credentials.yaml"),
			},
		},
		Crypto: CryptoConfig{
			FieldKey: getEnv("FIELD_ENCRYPTION_KEY", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Gateway.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("GATEWAY_ENVIRONMENT must be sandbox or production, got %q", c.Gateway.Environment)
	}

	if c.HTTP.ConnectTimeout <= 0 || c.HTTP.Timeout <= 0 {
		return fmt.Errorf("gateway timeouts must be positive")
	}

	switch c.Credentials.Source {
	case CredentialSourceAWS:
		if c.Credentials.AWS.Region == "" {
			return fmt.Errorf("AWS_REGION is required for the aws credential source")
		}
	case CredentialSourceVault:
		if c.Credentials.Vault.Address == "" {
			return fmt.Errorf("VAULT_ADDR is required for the vault credential source")
		}
		if c.Credentials.Vault.AuthMethod == "approle" &&
			(c.Credentials.Vault.RoleID == "" || c.Credentials.Vault.SecretID == "") {
			return fmt.Errorf("VAULT_ROLE_ID and VAULT_SECRET_ID are required for approle auth")
		}
	case CredentialSourceLocal:
		if c.Credentials.Local.Path == "" {
			return fmt.Errorf("CREDENTIALS_FILE is required for the local credential source")
		}
	default:
		return fmt.Errorf("CREDENTIAL_SOURCE must be aws, vault or local, got %q", c.Credentials.Source)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45s") or whole seconds ("45")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	seconds, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
