package express

import (
	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
)

// Factory builds gateway clients that share configuration and collaborators.
// Each call to New returns an independent instance with its own result state.
type Factory struct {
	cfg        ClientConfig
	httpClient ports.HTTPClient
	decryptor  ports.Decryptor
	formatter  ports.AmountFormatter
	logger     ports.Logger
}

// NewFactory creates a new client factory
func NewFactory(
	cfg ClientConfig,
	httpClient ports.HTTPClient,
	decryptor ports.Decryptor,
	formatter ports.AmountFormatter,
	logger ports.Logger,
) (*Factory, error) {
	if err := cfg.ResolvedEndpoints().validate(); err != nil {
		return nil, err
	}
	return &Factory{
		cfg:        cfg,
		httpClient: httpClient,
		decryptor:  decryptor,
		formatter:  formatter,
		logger:     logger,
	}, nil
}

// New returns a TokenizedClient when the credentials carry token service
// settings, otherwise a DirectClient
func (f *Factory) New(creds models.Credentials) (ports.Gateway, error) {
	if creds.Tokenized() {
		return NewTokenizedClient(f.cfg, creds, f.httpClient, f.decryptor, f.formatter, f.logger)
	}
	return NewDirectClient(f.cfg, creds, f.httpClient, f.decryptor, f.formatter, f.logger), nil
}
