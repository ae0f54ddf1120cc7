package wallet

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/model"
)

// NewTxParams describe a transaction to build. Utxos are fetched from the
// ledger when nil.
type NewTxParams struct {
	Recipients      []model.Recipient
	Utxos           []model.Utxo
	Change          string
	Fee             int64
	From            string
	RecentBlockhash string
}

// NewTx builds an unsigned transaction with the chain's engine.
func (w *Wallet) NewTx(ctx context.Context, p NewTxParams) (string, error) {
	utxos := p.Utxos
	if utxos == nil {
		var err error
		if utxos, err = w.GetUtxos(ctx); err != nil {
			return "", err
		}
	}

	id := w.Identity()
	return w.engine.Create(model.TxPayload{
		Network:         id.Network,
		Chain:           id.Chain,
		Recipients:      p.Recipients,
		Utxos:           utxos,
		Change:          p.Change,
		Fee:             p.Fee,
		From:            p.From,
		RecentBlockhash: p.RecentBlockhash,
	})
}

// SignTxParams carry an unsigned transaction. Utxos are fetched from the
// ledger when nil.
type SignTxParams struct {
	Tx    string
	Utxos []model.Utxo
}

// SignTx signs tx with the stored keys of exactly the addresses the engine
// reports as signers. A missing key aborts before anything is signed. The
// wallet stays read locked for the whole call.
func (w *Wallet) SignTx(ctx context.Context, p SignTxParams) (string, error) {
	if p.Tx == "" {
		return "", &MissingParameterError{Param: "tx"}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	u, err := w.unlockedView()
	if err != nil {
		return "", err
	}
	id := w.record.WalletIdentity

	utxos := p.Utxos
	if utxos == nil {
		if utxos, err = u.ledger.GetCoins(ctx, w.record.XPubKey, false); err != nil {
			return "", err
		}
	}

	payload := model.TxPayload{
		Network: id.Network,
		Chain:   id.Chain,
		Utxos:   utxos,
		Tx:      p.Tx,
	}

	addrs, err := w.engine.SigningAddresses(payload)
	if err != nil {
		return "", err
	}

	keys := make([]model.Key, len(addrs))
	var g errgroup.Group
	for i, addr := range addrs {
		g.Go(func() error {
			rec, err := w.store.GetKey(id.Name, addr)
			if err != nil {
				return err
			}
			key, err := openKey(rec, u.encryptionKey)
			if err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return w.engine.Sign(payload, keys)
}

// openKey returns the plaintext key of a stored record.
func openKey(rec *model.KeyRecord, encryptionKey []byte) (model.Key, error) {
	key := model.Key{
		Address: rec.Address,
		PubKey:  rec.PubKey,
		Path:    rec.Path,
	}

	if !rec.Encrypted {
		log.Warnf("Signing with plaintext key for %s", rec.Address)
		key.PrivKey = rec.PrivKey
		return key, nil
	}

	priv, err := crypto.DecryptPrivateKey(rec.PrivKey, []byte(rec.Address), encryptionKey)
	if err != nil {
		return model.Key{}, fmt.Errorf("failed to decrypt key for %s: %w", rec.Address, err)
	}
	key.PrivKey = string(priv)
	clear(priv)
	return key, nil
}
