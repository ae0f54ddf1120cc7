package wallet

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

const (
	testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPath   = "m/44'/0'/0'"
)

// fakeLedger records every call. All wallets of a test share one.
type fakeLedger struct {
	mu sync.Mutex

	configs    []client.Config
	registered []model.RegisterPayload
	imported   [][]model.AddressEntry
	broadcast  []model.BroadcastPayload
	coinCalls  []bool

	balance     model.Balance
	utxos       []model.Utxo
	registerErr error
}

func (f *fakeLedger) factory(cfg client.Config) Ledger {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	return f
}

func (f *fakeLedger) lastConfig() client.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[len(f.configs)-1]
}

func (f *fakeLedger) Register(_ context.Context, p model.RegisterPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p)
	return nil
}

func (f *fakeLedger) GetBalance(context.Context, string) (model.Balance, error) {
	return f.balance, nil
}

func (f *fakeLedger) GetCoins(_ context.Context, _ string, includeSpent bool) ([]model.Utxo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coinCalls = append(f.coinCalls, includeSpent)
	return f.utxos, nil
}

func (f *fakeLedger) Broadcast(_ context.Context, p model.BroadcastPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, p)
	return "txid-1", nil
}

func (f *fakeLedger) ImportAddresses(_ context.Context, _ string, entries []model.AddressEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, entries)
	return nil
}

// recordingStore wraps the bbolt store and records key lookups.
type recordingStore struct {
	*storage.Store

	mu     sync.Mutex
	lookup []string
}

func (s *recordingStore) GetKey(wallet, address string) (*model.KeyRecord, error) {
	s.mu.Lock()
	s.lookup = append(s.lookup, address)
	s.mu.Unlock()
	return s.Store.GetKey(wallet, address)
}

func (s *recordingStore) lookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookup...)
}

// fakeEngine reports a fixed signer set and records what it signs with.
type fakeEngine struct {
	mu sync.Mutex

	signers []string
	created []model.TxPayload
	signed  [][]model.Key
}

func (e *fakeEngine) Create(p model.TxPayload) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = append(e.created, p)
	return "unsigned", nil
}

func (e *fakeEngine) SigningAddresses(model.TxPayload) ([]string, error) {
	return e.signers, nil
}

func (e *fakeEngine) Sign(p model.TxPayload, keys []model.Key) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signed = append(e.signed, keys)
	return "signed:" + p.Tx, nil
}

type harness struct {
	cfg    Config
	store  *recordingStore
	ledger *fakeLedger
	engine *fakeEngine
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := storage.Open(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := &harness{
		store:  &recordingStore{Store: s},
		ledger: &fakeLedger{},
		engine: &fakeEngine{},
	}

	engines := txengine.NewRegistry()
	engines.Register("BTC", h.engine)

	h.cfg = Config{
		NewLedger: h.ledger.factory,
		Engines:   engines,
		Crypto:    crypto.LightParams,
	}
	return h
}

func testParams(name, password string) CreateParams {
	return CreateParams{
		Chain:    "BTC",
		Network:  "mainnet",
		Name:     name,
		Path:     testPath,
		Phrase:   testPhrase,
		Password: []byte(password),
		BaseURL:  "http://ledger.local/api",
	}
}

func (h *harness) create(t *testing.T, name, password string) *Wallet {
	t.Helper()

	w, err := CreateInStore(context.Background(), h.cfg, h.store, testParams(name, password))
	require.NoError(t, err)
	return w
}

func (h *harness) load(t *testing.T, name string) *Wallet {
	t.Helper()

	w, err := LoadFromStore(h.cfg, h.store, name)
	require.NoError(t, err)
	return w
}
