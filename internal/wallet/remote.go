package wallet

import (
	"context"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

// Register announces the wallet to the ledger service. A non-empty baseURL
// is persisted first and the client is rebound to it.
func (w *Wallet) Register(ctx context.Context, baseURL string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	u, err := w.unlockedView()
	if err != nil {
		return err
	}

	if baseURL != "" && baseURL != w.record.BaseURL {
		rec := w.record
		rec.BaseURL = baseURL
		if err := w.store.UpdateWallet(&rec); err != nil {
			return err
		}
		w.record = rec
		u.ledger = w.cfg.NewLedger(ledgerConfig(&rec, u.authKey, w.cfg))
	}

	payload := model.RegisterPayload{
		Name:    w.record.Name,
		PubKey:  u.masterKey.XPubKey,
		Path:    w.record.DerivationPath,
		Network: w.record.Network,
		Chain:   w.record.Chain,
	}
	if err := u.ledger.Register(ctx, payload); err != nil {
		return err
	}

	log.Infof("Registered wallet %s", payload.Name)
	return nil
}

// GetBalance fetches the wallet balance keyed by its xpub.
func (w *Wallet) GetBalance(ctx context.Context) (model.Balance, error) {
	var balance model.Balance
	err := w.withLedger(func(ledger Ledger, rec *model.WalletRecord) error {
		var err error
		balance, err = ledger.GetBalance(ctx, rec.XPubKey)
		return err
	})
	return balance, err
}

// GetUtxos fetches the wallet's unspent outputs.
func (w *Wallet) GetUtxos(ctx context.Context) ([]model.Utxo, error) {
	var utxos []model.Utxo
	err := w.withLedger(func(ledger Ledger, rec *model.WalletRecord) error {
		var err error
		utxos, err = ledger.GetCoins(ctx, rec.XPubKey, false)
		return err
	})
	return utxos, err
}

// Broadcast submits a signed transaction and returns its id.
func (w *Wallet) Broadcast(ctx context.Context, rawTx string) (string, error) {
	if rawTx == "" {
		return "", &MissingParameterError{Param: "rawTx"}
	}

	var txid string
	err := w.withLedger(func(ledger Ledger, rec *model.WalletRecord) error {
		var err error
		txid, err = ledger.Broadcast(ctx, model.BroadcastPayload{
			Network: rec.Network,
			Chain:   rec.Chain,
			RawTx:   rawTx,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	log.Infof("Broadcast transaction %s", txid)
	return txid, nil
}
