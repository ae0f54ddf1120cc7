package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
)

// CreateParams are the inputs of wallet creation.
type CreateParams struct {
	Chain   string
	Network string
	Name    string
	// Path is the account derivation path, see hdkey.PathFor.
	Path     string
	Phrase   string
	Password []byte

	// PassphraseProtected uses Password as the BIP39 passphrase as well.
	PassphraseProtected bool

	BaseURL string
}

func (p CreateParams) validate() error {
	required := []struct{ name, value string }{
		{"chain", p.Chain},
		{"network", p.Network},
		{"name", p.Name},
		{"path", p.Path},
		{"phrase", p.Phrase},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingParameterError{Param: r.name}
		}
	}
	if len(p.Password) == 0 {
		return &MissingParameterError{Param: "password"}
	}
	return nil
}

// Create opens the key store at path and creates a wallet in it. See
// CreateInStore.
func Create(ctx context.Context, cfg Config, path string, p CreateParams) (*Wallet, error) {
	cfg = cfg.withDefaults()

	store, err := cfg.OpenStore(path)
	if err != nil {
		return nil, err
	}

	w, err := CreateInStore(ctx, cfg, store, p)
	if w == nil {
		store.Close()
		return nil, err
	}
	w.ownsStore = true
	return w, err
}

// CreateInStore derives the wallet keys from the mnemonic, seals them,
// persists the record, then unlocks and registers the wallet.
//
// When registration fails the wallet is already persisted. It is returned
// unlocked together with the error so the caller can retry Register.
func CreateInStore(ctx context.Context, cfg Config, store KeyStore, p CreateParams) (*Wallet, error) {
	cfg = cfg.withDefaults()

	if err := p.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Engines.Engine(p.Chain); err != nil {
		return nil, err
	}

	rec, err := newRecord(p, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.SaveWallet(rec); err != nil {
		return nil, err
	}
	log.Infof("Created wallet %s (%s/%s) at %s", p.Name, p.Chain, p.Network, p.Path)

	w, err := LoadFromStore(cfg, store, p.Name)
	if err != nil {
		return nil, err
	}
	if err := w.Unlock(p.Password); err != nil {
		return nil, err
	}
	if err := w.Register(ctx, ""); err != nil {
		log.Warnf("Wallet %s created but not registered: %v", p.Name, err)
		return w, fmt.Errorf("wallet created but registration failed: %w", err)
	}
	return w, nil
}

// newRecord builds the sealed wallet record. The plaintext keys never leave
// this function.
func newRecord(p CreateParams, cfg Config) (*model.WalletRecord, error) {
	params, err := hdkey.NetParams(p.Chain, p.Network)
	if err != nil {
		return nil, err
	}

	passphrase := ""
	if p.PassphraseProtected {
		passphrase = string(p.Password)
	}

	masterKey, err := hdkey.FromMnemonic(p.Phrase, passphrase, params, p.Path)
	if err != nil {
		return nil, err
	}
	defer masterKey.Zero()

	key, err := crypto.GenerateEncryptionKey()
	if err != nil {
		return nil, err
	}
	defer clear(key)

	sealedKey, err := crypto.EncryptEncryptionKey(key, p.Password, cfg.Crypto)
	if err != nil {
		return nil, err
	}

	raw, err := masterKey.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal master key: %w", err)
	}
	defer clear(raw)

	sealedMaster, err := crypto.EncryptPrivateKey(raw, []byte(masterKey.PubKey), key)
	if err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(p.Password, cfg.Crypto.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &model.WalletRecord{
		WalletIdentity: model.WalletIdentity{
			Name:           p.Name,
			Chain:          p.Chain,
			Network:        p.Network,
			DerivationPath: p.Path,
		},
		EncryptionKey: sealedKey,
		MasterKey:     sealedMaster,
		PasswordHash:  hash,
		XPubKey:       masterKey.XPubKey,
		PubKey:        masterKey.PubKey,
		BaseURL:       p.BaseURL,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
