package models

// PaymentInstrument is a closed set of instrument shapes.
// Implementations: Card, StoredAccount, AchRaw, AchStored.
type PaymentInstrument interface {
	instrument()
}

// Card is a tokenized card: Token is a vendor payment account id on the
// direct gateway and a tokenization-service token on the proxy gateway.
type Card struct {
	Token           string
	ExpirationMonth int // 1-12
	ExpirationYear  int // Four-digit year
}

// HasExpiration reports whether both expiration fields are populated
func (c Card) HasExpiration() bool {
	return c.ExpirationMonth > 0 && c.ExpirationYear > 0
}

// StoredAccount references a payment account previously stored at the vendor
type StoredAccount struct {
	PaymentAccountID string
	ReferenceNumber  string
}

// AchRaw carries raw bank details. EncryptedAccountNumber is ciphertext
// produced by the at-rest field cipher and is decrypted only when the
// outbound payload is built.
type AchRaw struct {
	EncryptedAccountNumber string
	RoutingNumber          string
	AccountType            AccountType
}

// AchStored references a bank account stored at the vendor
type AchStored struct {
	PaymentAccountID string
	AccountType      AccountType
}

func (Card) instrument()          {}
func (StoredAccount) instrument() {}
func (AchRaw) instrument()        {}
func (AchStored) instrument()     {}
