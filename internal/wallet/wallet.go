// Package wallet holds the wallet lifecycle: creation from a mnemonic,
// password-gated unlock of the sealed master key, and the orchestration of
// key lookups, signing and ledger calls around it.
package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

// State is the in-memory lock state of a wallet.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// unlockedState is the secret material that only exists while unlocked.
type unlockedState struct {
	encryptionKey []byte
	masterKey     *hdkey.MasterKey
	authKey       *btcec.PrivateKey
	ledger        Ledger
}

// sameSecrets reports whether o holds the same key material as u.
func (u *unlockedState) sameSecrets(o *unlockedState) bool {
	return bytes.Equal(u.encryptionKey, o.encryptionKey) &&
		u.masterKey.XPubKey == o.masterKey.XPubKey &&
		u.authKey.PubKey().IsEqual(o.authKey.PubKey())
}

func (u *unlockedState) zero() {
	clear(u.encryptionKey)
	u.encryptionKey = nil
	if u.masterKey != nil {
		u.masterKey.Zero()
	}
	if u.authKey != nil {
		u.authKey.Zero()
	}
}

// Wallet is one persisted wallet. It starts Locked after Load and becomes
// Unlocked through Unlock. Methods are safe for concurrent use.
type Wallet struct {
	mu sync.RWMutex

	cfg       Config
	store     KeyStore
	ownsStore bool
	engine    txengine.Engine

	record model.WalletRecord

	// unlocked is nil while Locked.
	unlocked *unlockedState
}

// Load opens the key store at path and returns the named wallet, Locked.
func Load(cfg Config, path, name string) (*Wallet, error) {
	cfg = cfg.withDefaults()

	store, err := cfg.OpenStore(path)
	if err != nil {
		return nil, err
	}

	w, err := LoadFromStore(cfg, store, name)
	if err != nil {
		store.Close()
		return nil, err
	}
	w.ownsStore = true
	return w, nil
}

// LoadFromStore returns the named wallet from an already open store, Locked.
// Closing the wallet leaves the store open.
func LoadFromStore(cfg Config, store KeyStore, name string) (*Wallet, error) {
	cfg = cfg.withDefaults()

	rec, err := store.LoadWallet(name)
	if err != nil {
		return nil, err
	}

	engine, err := cfg.Engines.Engine(rec.Chain)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		cfg:    cfg,
		store:  store,
		engine: engine,
		record: *rec,
	}, nil
}

// Close locks the wallet and releases the store when Load opened it.
func (w *Wallet) Close() error {
	w.Lock()
	if w.ownsStore {
		return w.store.Close()
	}
	return nil
}

// State reports whether the wallet is locked.
func (w *Wallet) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.unlocked == nil {
		return Locked
	}
	return Unlocked
}

// Identity returns the immutable wallet identity.
func (w *Wallet) Identity() model.WalletIdentity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.record.WalletIdentity
}

// Record returns a copy of the persisted wallet record.
func (w *Wallet) Record() model.WalletRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.record
}

func (w *Wallet) XPubKey() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.record.XPubKey
}

func (w *Wallet) BaseURL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.record.BaseURL
}

// AuthPubKey returns the compressed hex public key of the request signing
// key.
func (w *Wallet) AuthPubKey() (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	u, err := w.unlockedView()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(u.authKey.PubKey().SerializeCompressed()), nil
}

// Unlock verifies password and decrypts the wallet secrets. Unlocking an
// unlocked wallet recomputes the same material and keeps the installed
// state. On failure the previous state is kept.
func (w *Wallet) Unlock(password []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.unlockLocked(password)
}

// unlockLocked installs the unlocked state. Callers hold w.mu for writing.
func (w *Wallet) unlockLocked(password []byte) error {
	u, err := unlock(&w.record, password, w.cfg)
	if err != nil {
		return err
	}

	if w.unlocked != nil {
		if w.unlocked.sameSecrets(u) {
			u.zero()
			return nil
		}
		w.unlocked.zero()
	}
	w.unlocked = u

	log.Infof("Wallet %s unlocked", w.record.Name)
	return nil
}

// Lock wipes the decrypted key material and returns the wallet to Locked.
func (w *Wallet) Lock() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.unlocked == nil {
		return
	}
	w.unlocked.zero()
	w.unlocked = nil

	log.Infof("Wallet %s locked", w.record.Name)
}

// unlockedView returns the unlocked material. Callers hold w.mu.
func (w *Wallet) unlockedView() (*unlockedState, error) {
	if w.unlocked == nil {
		return nil, ErrNotUnlocked
	}
	return w.unlocked, nil
}

// unlock is the Locked to Unlocked transition. It has no side effects on
// the wallet and either returns the full unlocked material or an error.
func unlock(rec *model.WalletRecord, password []byte, cfg Config) (*unlockedState, error) {
	if !crypto.CheckPassword(rec.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}

	key, err := crypto.DecryptEncryptionKey(rec.EncryptionKey, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt encryption key: %w", err)
	}

	raw, err := crypto.DecryptPrivateKey(rec.MasterKey, []byte(rec.PubKey), key)
	if err != nil {
		clear(key)
		return nil, fmt.Errorf("failed to decrypt master key: %w", err)
	}
	defer clear(raw)

	masterKey, err := hdkey.Parse(raw)
	if err != nil {
		clear(key)
		return nil, err
	}
	if masterKey.XPubKey != rec.XPubKey {
		clear(key)
		masterKey.Zero()
		return nil, errors.New("master key does not match wallet record")
	}

	authKey, err := masterKey.AuthSigningKey()
	if err != nil {
		clear(key)
		masterKey.Zero()
		return nil, fmt.Errorf("failed to derive auth key: %w", err)
	}

	return &unlockedState{
		encryptionKey: key,
		masterKey:     masterKey,
		authKey:       authKey,
		ledger:        cfg.NewLedger(ledgerConfig(rec, authKey, cfg)),
	}, nil
}

func ledgerConfig(rec *model.WalletRecord, authKey *btcec.PrivateKey, cfg Config) client.Config {
	return client.Config{
		BaseURL: rec.BaseURL,
		Chain:   rec.Chain,
		Network: rec.Network,
		AuthKey: authKey,
		Timeout: cfg.LedgerTimeout,
	}
}

// withLedger runs fn with the authenticated client while unlocked and a
// public one otherwise. The read lock is held until fn returns, so Unlock and
// Lock wait for requests in flight. fn must not call back into w.
func (w *Wallet) withLedger(fn func(ledger Ledger, rec *model.WalletRecord) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.unlocked != nil {
		return fn(w.unlocked.ledger, &w.record)
	}
	return fn(w.cfg.NewLedger(ledgerConfig(&w.record, nil, w.cfg)), &w.record)
}
