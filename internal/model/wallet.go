package model

import "time"

// WalletIdentity identifies a wallet in storage and in every registration
// payload. It never changes after creation.
type WalletIdentity struct {
	Name           string `json:"name"`
	Chain          string `json:"chain"`
	Network        string `json:"network"`
	DerivationPath string `json:"derivationPath"`
}

// WalletRecord is the persisted wallet. EncryptionKey and MasterKey are sealed
// blobs (hex); the plaintext keys they protect are never stored.
type WalletRecord struct {
	WalletIdentity

	EncryptionKey string    `json:"encryptionKey"`
	MasterKey     string    `json:"masterKey"`
	PasswordHash  string    `json:"passwordHash"`
	XPubKey       string    `json:"xPubKey"`
	PubKey        string    `json:"pubKey"`
	BaseURL       string    `json:"baseUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// KeyRecord is a stored per-address key. PrivKey holds a sealed blob when
// Encrypted is set and the chain encoding of the private key otherwise.
type KeyRecord struct {
	Address   string `json:"address"`
	PubKey    string `json:"pubKey"`
	PrivKey   string `json:"privKey"`
	Encrypted bool   `json:"encrypted"`
	Path      string `json:"path,omitempty"`
}

// Key is a plaintext signing key handed to a transaction engine.
// PrivKey is WIF for bitcoin and base58 for solana.
type Key struct {
	Address string `json:"address"`
	PubKey  string `json:"pubKey"`
	PrivKey string `json:"privKey"`
	Path    string `json:"path,omitempty"`
}
