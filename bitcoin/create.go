package bitcoin

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

const (
	dustLimit = 546 // Outputs below this (satoshi) are not relayed
)

// Engine builds and signs bitcoin transactions from ledger utxos.
type Engine struct{}

var _ txengine.Engine = (*Engine)(nil)

// New creates a bitcoin engine.
func New() *Engine {
	return &Engine{}
}

// Create spends every utxo in the payload to the recipients. What is left
// after the fee goes to the change address, or to the fee when it is dust.
func (e *Engine) Create(p model.TxPayload) (string, error) {
	params, err := hdkey.NetParams(hdkey.ChainBTC, p.Network)
	if err != nil {
		return "", err
	}
	if len(p.Recipients) == 0 {
		return "", errors.New("no recipients")
	}
	if len(p.Utxos) == 0 {
		return "", fmt.Errorf("%w: no utxos to spend", txengine.ErrInsufficientFunds)
	}
	if p.Fee < 0 {
		return "", errors.New("fee cannot be negative")
	}

	tx := wire.NewMsgTx(wire.TxVersion)

	var totalIn int64
	for _, u := range p.Utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return "", fmt.Errorf("invalid utxo txid %q: %w", u.TxID, err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
		totalIn += u.Value
	}

	var totalOut int64
	for _, r := range p.Recipients {
		if r.Amount <= 0 {
			return "", fmt.Errorf("invalid amount for %s", r.Address)
		}
		pkScript, err := addressScript(r.Address, params)
		if err != nil {
			return "", err
		}
		tx.AddTxOut(wire.NewTxOut(r.Amount, pkScript))
		totalOut += r.Amount
	}

	change := totalIn - totalOut - p.Fee
	if change < 0 {
		return "", fmt.Errorf("%w: have %d, need %d", txengine.ErrInsufficientFunds, totalIn, totalOut+p.Fee)
	}
	if change >= dustLimit {
		if p.Change == "" {
			return "", errors.New("change address required")
		}
		pkScript, err := addressScript(p.Change, params)
		if err != nil {
			return "", err
		}
		tx.AddTxOut(wire.NewTxOut(change, pkScript))
	}

	return encodeTx(tx)
}

// SigningAddresses maps every input of p.Tx to the address of the utxo it
// spends.
func (e *Engine) SigningAddresses(p model.TxPayload) ([]string, error) {
	params, err := hdkey.NetParams(hdkey.ChainBTC, p.Network)
	if err != nil {
		return nil, err
	}
	tx, err := decodeTx(p.Tx)
	if err != nil {
		return nil, err
	}
	utxos := indexUtxos(p.Utxos)

	seen := make(map[string]struct{}, len(tx.TxIn))
	addrs := make([]string, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		u, ok := utxos[in.PreviousOutPoint]
		if !ok {
			return nil, fmt.Errorf("no utxo for input %s", in.PreviousOutPoint)
		}
		addr, err := utxoAddress(u, params)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func addressScript(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("address %s is not for %s", address, params.Name)
	}
	return txscript.PayToAddrScript(addr)
}

// utxoAddress prefers the address reported by the ledger and falls back to
// the one encoded in the output script.
func utxoAddress(u model.Utxo, params *chaincfg.Params) (string, error) {
	if u.Address != "" {
		return u.Address, nil
	}
	script, err := hex.DecodeString(u.Script)
	if err != nil {
		return "", fmt.Errorf("invalid script for %s:%d: %w", u.TxID, u.Vout, err)
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, params)
	if err != nil || len(addrs) != 1 {
		return "", fmt.Errorf("cannot determine address of %s:%d", u.TxID, u.Vout)
	}
	return addrs[0].EncodeAddress(), nil
}

func indexUtxos(utxos []model.Utxo) map[wire.OutPoint]model.Utxo {
	idx := make(map[wire.OutPoint]model.Utxo, len(utxos))
	for _, u := range utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			continue
		}
		idx[wire.OutPoint{Hash: *hash, Index: u.Vout}] = u
	}
	return idx
}

func encodeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

func decodeTx(raw string) (*wire.MsgTx, error) {
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %w", err)
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}
	return tx, nil
}
