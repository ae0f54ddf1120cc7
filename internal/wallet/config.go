package wallet

import (
	"context"
	"time"

	"github.com/AlexZinkM/hd-wallet/bitcoin"
	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
	"github.com/AlexZinkM/hd-wallet/solana"
)

// KeyStore persists wallet records and per-address key records.
type KeyStore interface {
	SaveWallet(rec *model.WalletRecord) error
	UpdateWallet(rec *model.WalletRecord) error
	LoadWallet(name string) (*model.WalletRecord, error)
	AddKeys(wallet string, keys []model.KeyRecord) error
	GetKey(wallet, address string) (*model.KeyRecord, error)
	ListAddresses(wallet string) ([]string, error)
	Close() error
}

// Ledger is the remote ledger service as seen by one wallet.
type Ledger interface {
	Register(ctx context.Context, payload model.RegisterPayload) error
	GetBalance(ctx context.Context, pubKey string) (model.Balance, error)
	GetCoins(ctx context.Context, pubKey string, includeSpent bool) ([]model.Utxo, error)
	Broadcast(ctx context.Context, payload model.BroadcastPayload) (string, error)
	ImportAddresses(ctx context.Context, pubKey string, addresses []model.AddressEntry) error
}

// Config wires a wallet to its collaborators.
type Config struct {
	// OpenStore opens the key store at a storage location.
	OpenStore func(path string) (KeyStore, error)

	// NewLedger builds a ledger client. AuthKey is nil while locked.
	NewLedger func(cfg client.Config) Ledger

	// Engines resolves the transaction engine of a chain.
	Engines *txengine.Registry

	// Crypto holds the password work factors used for new secrets.
	Crypto crypto.Params

	// LedgerTimeout bounds every ledger request. Zero uses the client default.
	LedgerTimeout time.Duration
}

// DefaultConfig returns a config backed by bbolt storage, the HTTP ledger
// client and the bitcoin and solana engines.
func DefaultConfig() Config {
	engines := txengine.NewRegistry()
	engines.Register(hdkey.ChainBTC, bitcoin.New())
	engines.Register(hdkey.ChainSOL, solana.New())

	return Config{
		OpenStore: openBoltStore,
		NewLedger: newHTTPLedger,
		Engines:   engines,
		Crypto:    crypto.DefaultParams,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.OpenStore == nil {
		c.OpenStore = def.OpenStore
	}
	if c.NewLedger == nil {
		c.NewLedger = def.NewLedger
	}
	if c.Engines == nil {
		c.Engines = def.Engines
	}
	if c.Crypto == (crypto.Params{}) {
		c.Crypto = def.Crypto
	}
	return c
}

func openBoltStore(path string) (KeyStore, error) {
	s, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newHTTPLedger(cfg client.Config) Ledger {
	return client.NewLedgerClient(cfg)
}
