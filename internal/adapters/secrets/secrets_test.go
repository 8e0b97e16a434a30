package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	secretsmanagertypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var directCreds = &models.Credentials{
	AccountID:    "1013963",
	AccountToken: "683EED8A1A",
	AcceptorID:   "3928907",
	TerminalID:   "0001",
}

var proxyCreds = &models.Credentials{
	AccountID:    "1013963",
	AccountToken: "683EED8A1A",
	AcceptorID:   "3928907",
	TokenService: &models.TokenServiceCredentials{
		URL:    "https://proxy.example.com/",
		APIKey: "key",
		ID:     "tx-1",
	},
}

func TestCredentialPath(t *testing.T) {
	assert.Equal(t, "express-gateway/express/sandbox", CredentialPath("express-gateway", "express", "sandbox"))
	assert.Equal(t, "a/b/express/production", CredentialPath("/a/b/", "express", "production"))
	assert.Equal(t, "express/sandbox", CredentialPath("", "express", "sandbox"))
}

func TestCredentialsMapRoundTrip(t *testing.T) {
	for _, creds := range []*models.Credentials{directCreds, proxyCreds} {
		got, err := credentialsFromMap(credentialsToMap(creds))
		require.NoError(t, err)
		assert.Equal(t, creds, got)
	}

	_, err := credentialsFromMap(map[string]interface{}{keyAccountID: 42})
	assert.Error(t, err)
}

// fakeSecretsManager keeps secrets in memory and mimics not-found errors
type fakeSecretsManager struct {
	mu      sync.Mutex
	secrets map[string]string
	tags    map[string][]secretsmanagertypes.Tag
	getErr  error
}

func newFakeSecretsManager() *fakeSecretsManager {
	return &fakeSecretsManager{
		secrets: map[string]string{},
		tags:    map[string][]secretsmanagertypes.Tag{},
	}
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.secrets[aws.ToString(in.SecretId)]
	if !ok {
		return nil, &secretsmanagertypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func (f *fakeSecretsManager) PutSecretValue(_ context.Context, in *secretsmanager.PutSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := aws.ToString(in.SecretId)
	if _, ok := f.secrets[id]; !ok {
		return nil, &secretsmanagertypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	f.secrets[id] = aws.ToString(in.SecretString)
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (f *fakeSecretsManager) CreateSecret(_ context.Context, in *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.Name)
	f.secrets[name] = aws.ToString(in.SecretString)
	f.tags[name] = in.Tags
	return &secretsmanager.CreateSecretOutput{Name: in.Name}, nil
}

func TestAWSCredentialStore_GetCredentials(t *testing.T) {
	fake := newFakeSecretsManager()
	raw, err := json.Marshal(proxyCreds)
	require.NoError(t, err)
	fake.secrets["express-gateway/express/sandbox"] = string(raw)

	store := newAWSCredentialStore(fake, &AWSSecretsManagerConfig{Prefix: "express-gateway"}, zap.NewNop())

	got, err := store.GetCredentials(context.Background(), "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, proxyCreds, got)
	assert.True(t, got.Tokenized())

	_, err = store.GetCredentials(context.Background(), "express", "production")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestAWSCredentialStore_Errors(t *testing.T) {
	fake := newFakeSecretsManager()
	fake.secrets["express/sandbox"] = "{not json"
	store := newAWSCredentialStore(fake, &AWSSecretsManagerConfig{}, zap.NewNop())

	_, err := store.GetCredentials(context.Background(), "express", "sandbox")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)

	fake.getErr = errors.New("throttled")
	_, err = store.GetCredentials(context.Background(), "express", "sandbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestAWSCredentialStore_PutCredentials(t *testing.T) {
	fake := newFakeSecretsManager()
	store := newAWSCredentialStore(fake, &AWSSecretsManagerConfig{Prefix: "eg"}, zap.NewNop())
	ctx := context.Background()

	// First write creates the secret
	require.NoError(t, store.PutCredentials(ctx, "express", "sandbox", directCreds))
	require.Contains(t, fake.tags, "eg/express/sandbox")
	assert.Len(t, fake.tags["eg/express/sandbox"], 2)

	// Second write adds a version
	updated := *directCreds
	updated.TerminalID = "0002"
	require.NoError(t, store.PutCredentials(ctx, "express", "sandbox", &updated))

	got, err := store.GetCredentials(ctx, "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, "0002", got.TerminalID)

	assert.Error(t, store.PutCredentials(ctx, "express", "sandbox", nil))
}

// vaultStub serves the KV v2 and AppRole endpoints the store uses
type vaultStub struct {
	*httptest.Server
	mu      sync.Mutex
	data    map[string]map[string]interface{}
	tokens  []string
	methods []string
}

func newVaultStub(t *testing.T) *vaultStub {
	t.Helper()
	stub := &vaultStub{data: map[string]map[string]interface{}{}}

	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		stub.tokens = append(stub.tokens, r.Header.Get("X-Vault-Token"))
		stub.methods = append(stub.methods, r.Method)

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/v1/auth/approle/login" {
			_, _ = io.WriteString(w, `{"auth":{"client_token":"approle-token"}}`)
			return
		}

		switch r.Method {
		case http.MethodGet:
			payload, ok := stub.data[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"errors":[]}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"data":     payload,
					"metadata": map[string]interface{}{"version": 1},
				},
			})
		case http.MethodPut, http.MethodPost:
			var body struct {
				Data map[string]interface{} `json:"data"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			stub.data[r.URL.Path] = body.Data
			_, _ = io.WriteString(w, `{"data":{"version":2}}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(stub.Close)
	return stub
}

func (s *vaultStub) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[len(s.tokens)-1]
}

func TestVaultCredentialStore_GetCredentials(t *testing.T) {
	stub := newVaultStub(t)
	stub.data["/v1/secret/data/express-gateway/express/sandbox"] = credentialsToMap(proxyCreds)

	cfg := DefaultVaultConfig(stub.URL)
	cfg.Token = "root"
	cfg.Prefix = "express-gateway"

	store, err := NewVaultCredentialStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	got, err := store.GetCredentials(context.Background(), "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, proxyCreds, got)
	assert.Equal(t, "root", stub.lastToken())

	_, err = store.GetCredentials(context.Background(), "express", "production")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestVaultCredentialStore_AppRoleAndPut(t *testing.T) {
	stub := newVaultStub(t)

	cfg := DefaultVaultConfig(stub.URL)
	cfg.AuthMethod = "approle"
	cfg.RoleID = "role"
	cfg.SecretID = "secret"

	store, err := NewVaultCredentialStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.PutCredentials(context.Background(), "express", "sandbox", directCreds))
	assert.Equal(t, "approle-token", stub.lastToken())
	assert.Equal(t, credentialsToMap(directCreds), stub.data["/v1/secret/data/express/sandbox"])

	got, err := store.GetCredentials(context.Background(), "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, directCreds, got)
	assert.Nil(t, got.TokenService)
}

func TestNewVaultCredentialStore_AuthErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *VaultConfig
	}{
		{"token missing", &VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "token"}},
		{"approle missing secret", &VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "approle", RoleID: "r"}},
		{"unknown method", &VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "kubernetes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVaultCredentialStore(context.Background(), tt.cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestLocalCredentialStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "credentials.yaml")
	store := NewLocalCredentialStore(path, zap.NewNop())
	ctx := context.Background()

	_, err := store.GetCredentials(ctx, "express", "sandbox")
	require.Error(t, err, "file does not exist yet")

	require.NoError(t, store.PutCredentials(ctx, "express", "sandbox", directCreds))
	require.NoError(t, store.PutCredentials(ctx, "express", "production", proxyCreds))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.GetCredentials(ctx, "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, directCreds, got)

	got, err = store.GetCredentials(ctx, "express", "production")
	require.NoError(t, err)
	assert.Equal(t, proxyCreds, got)

	// Callers get a copy
	got.TokenService.APIKey = "mutated"
	again, err := store.GetCredentials(ctx, "express", "production")
	require.NoError(t, err)
	assert.Equal(t, "key", again.TokenService.APIKey)

	_, err = store.GetCredentials(ctx, "other", "sandbox")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestLocalCredentialStore_HandWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	content := `express:
  sandbox:
    account_id: "1013963"
    account_token: "683EED8A1A"
    acceptor_id: "3928907"
    terminal_id: "0001"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	got, err := NewLocalCredentialStore(path, zap.NewNop()).GetCredentials(context.Background(), "express", "sandbox")
	require.NoError(t, err)
	assert.Equal(t, directCreds, got)

	require.NoError(t, os.WriteFile(path, []byte("express: [unclosed"), 0600))
	_, err = NewLocalCredentialStore(path, zap.NewNop()).GetCredentials(context.Background(), "express", "sandbox")
	assert.Error(t, err)
}
