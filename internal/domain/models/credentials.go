package models

// Credentials is the resolved vendor credential set a gateway client is bound to
type Credentials struct {
	AccountID    string `json:"account_id" yaml:"account_id"`
	AccountToken string `json:"account_token" yaml:"account_token"`
	AcceptorID   string `json:"acceptor_id" yaml:"acceptor_id"`
	TerminalID   string `json:"terminal_id" yaml:"terminal_id"`

	// TokenService is set when calls must be routed through the tokenization proxy
	TokenService *TokenServiceCredentials `json:"token_service,omitempty" yaml:"token_service,omitempty"`
}

// TokenServiceCredentials identifies the tokenization proxy account
type TokenServiceCredentials struct {
	URL    string `json:"url" yaml:"url"`
	APIKey string `json:"api_key" yaml:"api_key"`
	ID     string `json:"id" yaml:"id"`
}

// Tokenized reports whether the credentials route through the tokenization proxy.
// The proxy URL may come from client configuration instead of the credentials.
func (c Credentials) Tokenized() bool {
	return c.TokenService != nil
}
