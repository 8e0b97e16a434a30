package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// AWSSecretsManagerConfig contains configuration for the AWS Secrets Manager store
type AWSSecretsManagerConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string

	// Secret id prefix: {prefix}/{gateway}/{environment}
	Prefix string
}

// secretsManagerAPI is the subset of the Secrets Manager client the store uses
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// AWSCredentialStore reads gateway credentials stored as JSON secrets
type AWSCredentialStore struct {
	client secretsManagerAPI
	config *AWSSecretsManagerConfig
	logger *zap.Logger
}

var (
	_ ports.CredentialStore = (*AWSCredentialStore)(nil)
	_ CredentialWriter      = (*AWSCredentialStore)(nil)
)

// NewAWSCredentialStore creates a store backed by AWS Secrets Manager
func NewAWSCredentialStore(ctx context.Context, cfg *AWSSecretsManagerConfig, logger *zap.Logger) (*AWSCredentialStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		// Use specific profile (local development)
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	// Default credentials chain otherwise (IAM role in production)
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager credential store initialized",
		zap.String("region", cfg.Region),
		zap.String("prefix", cfg.Prefix),
	)

	return newAWSCredentialStore(secretsmanager.NewFromConfig(awsConfig, clientOptions...), cfg, logger), nil
}

func newAWSCredentialStore(client secretsManagerAPI, cfg *AWSSecretsManagerConfig, logger *zap.Logger) *AWSCredentialStore {
	return &AWSCredentialStore{client: client, config: cfg, logger: logger}
}

// GetCredentials retrieves the JSON credential secret for a gateway and environment
func (s *AWSCredentialStore) GetCredentials(ctx context.Context, gateway, environment string) (*models.Credentials, error) {
	path := CredentialPath(s.config.Prefix, gateway, environment)

	startTime := time.Now()
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		var notFound *secretsmanagertypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, path)
		}
		s.logger.Error("Failed to retrieve credentials",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", path)
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", path, err)
	}

	s.logger.Debug("Credentials retrieved",
		zap.String("path", path),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &creds, nil
}

// PutCredentials stores a new secret version, creating the secret if needed
func (s *AWSCredentialStore) PutCredentials(ctx context.Context, gateway, environment string, creds *models.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are required")
	}
	path := CredentialPath(s.config.Prefix, gateway, environment)

	value, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(path),
		SecretString: aws.String(string(value)),
	})
	if err == nil {
		s.logger.Info("Credentials updated", zap.String("path", path))
		return nil
	}

	var notFound *secretsmanagertypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to put secret %s: %w", path, err)
	}

	_, err = s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(path),
		SecretString: aws.String(string(value)),
		Tags: []secretsmanagertypes.Tag{
			{Key: aws.String("gateway"), Value: aws.String(gateway)},
			{Key: aws.String("environment"), Value: aws.String(environment)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create secret %s: %w", path, err)
	}

	s.logger.Info("Credentials created", zap.String("path", path))
	return nil
}
