package main

import (
	"context"
	"fmt"

	"github.com/kevin07696/express-gateway/internal/adapters/express"
	"github.com/kevin07696/express-gateway/internal/adapters/secrets"
	"github.com/kevin07696/express-gateway/internal/config"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"github.com/kevin07696/express-gateway/internal/services/credentials"
	"github.com/kevin07696/express-gateway/pkg/crypto"
	pkghttp "github.com/kevin07696/express-gateway/pkg/http"
	"github.com/kevin07696/express-gateway/pkg/money"
	"github.com/kevin07696/express-gateway/pkg/security"
	"go.uber.org/zap"
)

// app holds the wired dependencies for one CLI invocation
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    ports.CredentialStore
	resolver *credentials.Resolver
	factory  *express.Factory
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := security.NewLogger(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return nil, err
	}

	store, err := initCredentialStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	decryptor, err := initDecryptor(cfg, logger)
	if err != nil {
		return nil, err
	}

	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(cfg.HTTP.ConnectTimeout), cfg.HTTP.Timeout)

	factory, err := express.NewFactory(clientCfg, httpClient, decryptor, money.NewFormatter(), security.NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("invalid gateway configuration: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		resolver: credentials.NewResolver(store, logger, cfg.Credentials.CacheTTL),
		factory:  factory,
	}, nil
}

// gateway resolves credentials and builds a client for this invocation
func (a *app) gateway(ctx context.Context, name string) (ports.Gateway, error) {
	creds, err := a.resolver.Resolve(ctx, name, a.cfg.Gateway.Environment)
	if err != nil {
		return nil, err
	}
	return a.factory.New(creds)
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// clientConfig maps environment configuration onto the client settings
func clientConfig(cfg *config.Config) (express.ClientConfig, error) {
	env, err := express.ParseEnvironment(cfg.Gateway.Environment)
	if err != nil {
		return express.ClientConfig{}, err
	}

	cc := express.DefaultClientConfig(env)
	cc.Application = express.ApplicationInfo{
		ID:      cfg.Gateway.ApplicationID,
		Name:    cfg.Gateway.ApplicationName,
		Version: cfg.Gateway.ApplicationVersion,
	}
	cc.Endpoints = express.Endpoints{
		Transaction: cfg.Gateway.TransactionURL,
		Reporting:   cfg.Gateway.ReportingURL,
		Services:    cfg.Gateway.ServicesURL,
		HostedPage:  cfg.Gateway.HostedPageURL,
	}
	cc.DisableDuplicateCheck = cfg.Gateway.DisableDuplicateCheck
	cc.ProxyURL = cfg.Gateway.TokenProxyURL
	return cc, nil
}

// initCredentialStore selects the credential backend
// Supports:
//   - AWS Secrets Manager: CREDENTIAL_SOURCE=aws
//   - HashiCorp Vault: CREDENTIAL_SOURCE=vault
//   - Local YAML file (development): CREDENTIAL_SOURCE=local
func initCredentialStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.CredentialStore, error) {
	c := cfg.Credentials

	switch c.Source {
	case config.CredentialSourceAWS:
		return secrets.NewAWSCredentialStore(ctx, &secrets.AWSSecretsManagerConfig{
			Region:   c.AWS.Region,
			Profile:  c.AWS.Profile,
			Endpoint: c.AWS.Endpoint,
			Prefix:   c.Prefix,
		}, logger)

	case config.CredentialSourceVault:
		vaultCfg := secrets.DefaultVaultConfig(c.Vault.Address)
		vaultCfg.AuthMethod = c.Vault.AuthMethod
		vaultCfg.Token = c.Vault.Token
		vaultCfg.RoleID = c.Vault.RoleID
		vaultCfg.SecretID = c.Vault.SecretID
		vaultCfg.Namespace = c.Vault.Namespace
		vaultCfg.MountPath = c.Vault.MountPath
		vaultCfg.Prefix = c.Prefix
		vaultCfg.TLSSkipVerify = c.Vault.TLSSkipVerify
		return secrets.NewVaultCredentialStore(ctx, vaultCfg, logger)

	case config.CredentialSourceLocal:
		logger.Warn("Using local credential file - NOT for production use!",
			zap.String("file", c.Local.Path),
		)
		return secrets.NewLocalCredentialStore(c.Local.Path, logger), nil
	}

	return nil, fmt.Errorf("unsupported credential source %q", c.Source)
}

// initDecryptor builds the field cipher for encrypted ACH account numbers.
// Without a key, raw ACH operations fail and every other operation works.
func initDecryptor(cfg *config.Config, logger *zap.Logger) (ports.Decryptor, error) {
	if cfg.Crypto.FieldKey == "" {
		logger.Debug("FIELD_ENCRYPTION_KEY not set, raw ACH payloads are disabled")
		return nil, nil
	}
	cipher, err := crypto.NewFieldCipherFromHex(cfg.Crypto.FieldKey)
	if err != nil {
		return nil, fmt.Errorf("invalid FIELD_ENCRYPTION_KEY: %w", err)
	}
	return cipher, nil
}
