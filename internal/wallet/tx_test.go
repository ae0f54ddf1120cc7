package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"sort"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/bitcoin"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

func TestNewTxFetchesUtxos(t *testing.T) {
	h := newHarness(t)
	w := h.create(t, "w", "p1")
	h.ledger.utxos = []model.Utxo{{TxID: "aa", Value: 5}}

	recipients := []model.Recipient{{Address: "addr", Amount: 3}}
	tx, err := w.NewTx(context.Background(), NewTxParams{Recipients: recipients, Change: "chg", Fee: 1})
	require.NoError(t, err)
	require.Equal(t, "unsigned", tx)
	require.Len(t, h.ledger.coinCalls, 1)

	require.Equal(t, model.TxPayload{
		Network:    "mainnet",
		Chain:      "BTC",
		Recipients: recipients,
		Utxos:      h.ledger.utxos,
		Change:     "chg",
		Fee:        1,
	}, h.engine.created[0])

	// Supplied utxos skip the ledger.
	supplied := []model.Utxo{{TxID: "bb", Value: 9}}
	_, err = w.NewTx(context.Background(), NewTxParams{Recipients: recipients, Utxos: supplied})
	require.NoError(t, err)
	require.Len(t, h.ledger.coinCalls, 1)
	require.Equal(t, supplied, h.engine.created[1].Utxos)
}

func TestSignTxReadsExactSignerKeys(t *testing.T) {
	h := newHarness(t)
	w := h.create(t, "w", "p1")

	keys := []model.Key{
		{Address: "a", PrivKey: "priv-a"},
		{Address: "b", PrivKey: "priv-b"},
		{Address: "c", PrivKey: "priv-c"},
	}
	require.NoError(t, w.ImportKeys(context.Background(), keys, nil))
	h.engine.signers = []string{"a", "b"}

	signed, err := w.SignTx(context.Background(), SignTxParams{Tx: "raw", Utxos: []model.Utxo{}})
	require.NoError(t, err)
	require.Equal(t, "signed:raw", signed)
	require.Empty(t, h.ledger.coinCalls)

	lookups := h.store.lookups()
	sort.Strings(lookups)
	require.Equal(t, []string{"a", "b"}, lookups)

	require.Len(t, h.engine.signed, 1)
	got := h.engine.signed[0]
	require.Equal(t, "a", got[0].Address)
	require.Equal(t, "priv-a", got[0].PrivKey)
	require.Equal(t, "b", got[1].Address)
	require.Equal(t, "priv-b", got[1].PrivKey)
}

func TestSignTxKeyNotFound(t *testing.T) {
	h := newHarness(t)
	w := h.create(t, "w", "p1")

	require.NoError(t, w.ImportKeys(context.Background(), []model.Key{{Address: "a", PrivKey: "priv-a"}}, nil))
	h.engine.signers = []string{"a", "missing"}

	_, err := w.SignTx(context.Background(), SignTxParams{Tx: "raw"})
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
	require.Empty(t, h.engine.signed)
	require.Len(t, h.ledger.coinCalls, 1)

	for _, addr := range h.store.lookups() {
		require.Contains(t, h.engine.signers, addr)
	}
}

func TestSignTxRequiresUnlock(t *testing.T) {
	h := newHarness(t)
	h.create(t, "w", "p1")
	w := h.load(t, "w")

	_, err := w.SignTx(context.Background(), SignTxParams{Tx: "raw"})
	require.ErrorIs(t, err, ErrNotUnlocked)
	require.Empty(t, h.store.lookups())

	_, err = w.SignTx(context.Background(), SignTxParams{})
	require.True(t, IsMissingParameterError(err))
}

func TestSignTxPlaintextRecord(t *testing.T) {
	h := newHarness(t)
	h.create(t, "w", "p1")

	locked := h.load(t, "w")
	require.NoError(t, locked.ImportKeys(context.Background(), []model.Key{{Address: "a", PrivKey: "priv-a"}}, nil))

	require.NoError(t, locked.Unlock([]byte("p1")))
	h.engine.signers = []string{"a"}
	_, err := locked.SignTx(context.Background(), SignTxParams{Tx: "raw", Utxos: []model.Utxo{}})
	require.NoError(t, err)
	require.Equal(t, "priv-a", h.engine.signed[0][0].PrivKey)
}

// TestBitcoinSpend runs derive, build, sign against the real bitcoin engine
// and checks the signature scripts with the script engine.
func TestBitcoinSpend(t *testing.T) {
	h := newHarness(t)
	h.cfg.Engines = txengine.NewRegistry()
	h.cfg.Engines.Register("BTC", bitcoin.New())
	w := h.create(t, "w", "p1")

	recv, err := w.DeriveAddress(context.Background(), 0, false)
	require.NoError(t, err)
	change, err := w.DeriveAddress(context.Background(), 0, true)
	require.NoError(t, err)

	addr, err := btcutil.DecodeAddress(recv.Address, &chaincfg.MainNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	utxos := []model.Utxo{{
		TxID:    "0437cd7f8525ceed2324359c2d0ba26006d92d856a9c20fa0241106ee5a597c9",
		Vout:    0,
		Address: recv.Address,
		Value:   100000,
	}}
	h.ledger.utxos = utxos

	unsigned, err := w.NewTx(context.Background(), NewTxParams{
		Recipients: []model.Recipient{{Address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", Amount: 60000}},
		Change:     change.Address,
		Fee:        1000,
	})
	require.NoError(t, err)

	signed, err := w.SignTx(context.Background(), SignTxParams{Tx: unsigned})
	require.NoError(t, err)
	require.Equal(t, []string{recv.Address}, h.store.lookups())

	tx := decodeHexTx(t, signed)
	require.Len(t, tx.TxOut, 2)
	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, 100000)
	vm, err := txscript.NewEngine(pkScript, tx, 0, txscript.StandardVerifyFlags, nil,
		txscript.NewTxSigHashes(tx, fetcher), 100000, fetcher)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

func decodeHexTx(t *testing.T, raw string) *wire.MsgTx {
	t.Helper()

	data, err := hex.DecodeString(raw)
	require.NoError(t, err)
	tx := wire.NewMsgTx(wire.TxVersion)
	require.NoError(t, tx.Deserialize(bytes.NewReader(data)))
	return tx
}
