package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
)

// ImportKeys stores external signing keys. A non-empty password unlocks the
// wallet first, within the same critical section as the import.
//
// While unlocked the private keys are sealed with the wallet encryption key
// and the addresses are announced to the ledger. While locked the keys are
// written in cleartext and the ledger is not called, see importPlaintext.
func (w *Wallet) ImportKeys(ctx context.Context, keys []model.Key, password []byte) error {
	for _, k := range keys {
		if k.Address == "" {
			return &MissingParameterError{Param: "address"}
		}
		if k.PrivKey == "" {
			return &MissingParameterError{Param: "privKey"}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(password) > 0 {
		if err := w.unlockLocked(password); err != nil {
			return err
		}
	}

	if w.unlocked == nil {
		return w.importPlaintext(keys)
	}
	return w.importSealed(ctx, keys)
}

// importPlaintext persists keys without encryption. Anyone with access to
// the store can read them. Callers hold w.mu.
func (w *Wallet) importPlaintext(keys []model.Key) error {
	records := make([]model.KeyRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, model.KeyRecord{
			Address:   k.Address,
			PubKey:    k.PubKey,
			PrivKey:   k.PrivKey,
			Encrypted: false,
			Path:      k.Path,
		})
	}

	if err := w.store.AddKeys(w.record.Name, records); err != nil {
		return err
	}

	log.Warnf("Imported %d keys into locked wallet %s without encryption",
		len(keys), w.record.Name)
	return nil
}

// importSealed encrypts and persists keys, then announces their addresses.
// Callers hold w.mu for writing.
func (w *Wallet) importSealed(ctx context.Context, keys []model.Key) error {
	u := w.unlocked

	records := make([]model.KeyRecord, 0, len(keys))
	entries := make([]model.AddressEntry, 0, len(keys))
	for _, k := range keys {
		sealed, err := crypto.EncryptPrivateKey([]byte(k.PrivKey), []byte(k.Address), u.encryptionKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt key for %s: %w", k.Address, err)
		}
		records = append(records, model.KeyRecord{
			Address:   k.Address,
			PubKey:    k.PubKey,
			PrivKey:   sealed,
			Encrypted: true,
			Path:      k.Path,
		})
		entries = append(entries, model.AddressEntry{Address: k.Address})
	}

	if err := w.store.AddKeys(w.record.Name, records); err != nil {
		return err
	}

	if err := u.ledger.ImportAddresses(ctx, w.record.XPubKey, entries); err != nil {
		return err
	}

	log.Infof("Imported %d keys into wallet %s", len(keys), w.record.Name)
	return nil
}

// DeriveAddress derives the receive or change key at index under the
// account key, stores it sealed and announces it. The returned key carries
// no private part.
func (w *Wallet) DeriveAddress(ctx context.Context, index uint32, change bool) (model.Key, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	u, err := w.unlockedView()
	if err != nil {
		return model.Key{}, err
	}
	if w.record.Chain != hdkey.ChainBTC {
		return model.Key{}, fmt.Errorf("%w: address derivation on %s", ErrUnsupportedOperation, w.record.Chain)
	}

	params, err := hdkey.NetParams(w.record.Chain, w.record.Network)
	if err != nil {
		return model.Key{}, err
	}

	key, err := u.masterKey.AddressKey(index, change, params)
	if err != nil {
		return model.Key{}, err
	}

	if err := w.importSealed(ctx, []model.Key{key}); err != nil {
		return model.Key{}, err
	}

	key.PrivKey = ""
	return key, nil
}

// Addresses lists the addresses with a stored key.
func (w *Wallet) Addresses() ([]string, error) {
	return w.store.ListAddresses(w.Identity().Name)
}

// ChangePassword reseals the encryption key under a new password. The master
// key blob is unchanged. The wallet state is not affected.
func (w *Wallet) ChangePassword(oldPassword, newPassword []byte) error {
	if len(newPassword) == 0 {
		return &MissingParameterError{Param: "password"}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !crypto.CheckPassword(w.record.PasswordHash, oldPassword) {
		return ErrIncorrectPassword
	}

	key, err := crypto.DecryptEncryptionKey(w.record.EncryptionKey, oldPassword)
	if err != nil {
		return fmt.Errorf("failed to decrypt encryption key: %w", err)
	}
	defer clear(key)

	sealed, err := crypto.EncryptEncryptionKey(key, newPassword, w.cfg.Crypto)
	if err != nil {
		return err
	}
	hash, err := crypto.HashPassword(newPassword, w.cfg.Crypto.BcryptCost)
	if err != nil {
		return err
	}

	rec := w.record
	rec.EncryptionKey = sealed
	rec.PasswordHash = hash
	if err := w.store.UpdateWallet(&rec); err != nil {
		return err
	}
	w.record = rec

	log.Infof("Changed password of wallet %s", rec.Name)
	return nil
}
