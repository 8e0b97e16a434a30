package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// credentialFile is the on-disk layout: gateway -> environment -> credentials
//
//	express:
//	  sandbox:
//	    account_id: "1013963"
//	    account_token: "..."
type credentialFile map[string]map[string]*models.Credentials

// LocalCredentialStore reads credentials from a YAML file.
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type LocalCredentialStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

var (
	_ ports.CredentialStore = (*LocalCredentialStore)(nil)
	_ CredentialWriter      = (*LocalCredentialStore)(nil)
)

// NewLocalCredentialStore creates a file-backed credential store
func NewLocalCredentialStore(path string, logger *zap.Logger) *LocalCredentialStore {
	return &LocalCredentialStore{path: path, logger: logger}
}

// GetCredentials reads the file on every call so edits apply without a restart
func (s *LocalCredentialStore) GetCredentials(_ context.Context, gateway, environment string) (*models.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Reading credentials from file",
		zap.String("file", s.path),
		zap.String("gateway", gateway),
		zap.String("environment", environment),
	)

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	creds := file[gateway][environment]
	if creds == nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, CredentialPath("", gateway, environment))
	}

	out := *creds
	if creds.TokenService != nil {
		ts := *creds.TokenService
		out.TokenService = &ts
	}
	return &out, nil
}

// PutCredentials writes the credentials into the file, creating it if needed
func (s *LocalCredentialStore) PutCredentials(_ context.Context, gateway, environment string, creds *models.Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if file == nil {
		file = credentialFile{}
	}
	if file[gateway] == nil {
		file[gateway] = map[string]*models.Credentials{}
	}
	file[gateway][environment] = creds

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode credential file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	s.logger.Info("Credentials written to file",
		zap.String("file", s.path),
		zap.String("gateway", gateway),
		zap.String("environment", environment),
	)
	return nil
}

func (s *LocalCredentialStore) load() (credentialFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("credential file %s: %w", s.path, err)
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var file credentialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", s.path, err)
	}
	return file, nil
}
