package bitcoin

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

// Sign signs every input of p.Tx with the key of the address it spends.
// P2PKH and P2WPKH outputs are supported.
func (e *Engine) Sign(p model.TxPayload, keys []model.Key) (string, error) {
	params, err := hdkey.NetParams(hdkey.ChainBTC, p.Network)
	if err != nil {
		return "", err
	}
	tx, err := decodeTx(p.Tx)
	if err != nil {
		return "", err
	}

	wifs := make(map[string]*btcutil.WIF, len(keys))
	for _, k := range keys {
		wif, err := btcutil.DecodeWIF(k.PrivKey)
		if err != nil {
			return "", fmt.Errorf("invalid key for %s: %w", k.Address, err)
		}
		wifs[k.Address] = wif
	}

	utxos := indexUtxos(p.Utxos)
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	scripts := make([][]byte, len(tx.TxIn))
	for i, in := range tx.TxIn {
		u, ok := utxos[in.PreviousOutPoint]
		if !ok {
			return "", fmt.Errorf("no utxo for input %s", in.PreviousOutPoint)
		}
		script, err := utxoScript(u, params)
		if err != nil {
			return "", err
		}
		scripts[i] = script
		prevOuts[in.PreviousOutPoint] = wire.NewTxOut(u.Value, script)
	}

	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i, in := range tx.TxIn {
		u := utxos[in.PreviousOutPoint]
		addr, err := utxoAddress(u, params)
		if err != nil {
			return "", err
		}
		wif, ok := wifs[addr]
		if !ok {
			return "", fmt.Errorf("%w: %s", txengine.ErrMissingKey, addr)
		}

		switch class := txscript.GetScriptClass(scripts[i]); class {
		case txscript.PubKeyHashTy:
			sigScript, err := txscript.SignatureScript(tx, i, scripts[i], txscript.SigHashAll, wif.PrivKey, wif.CompressPubKey)
			if err != nil {
				return "", fmt.Errorf("failed to sign input %d: %w", i, err)
			}
			tx.TxIn[i].SignatureScript = sigScript

		case txscript.WitnessV0PubKeyHashTy:
			witness, err := txscript.WitnessSignature(tx, sigHashes, i, u.Value, scripts[i], txscript.SigHashAll, wif.PrivKey, true)
			if err != nil {
				return "", fmt.Errorf("failed to sign input %d: %w", i, err)
			}
			tx.TxIn[i].Witness = witness

		default:
			return "", fmt.Errorf("unsupported script class %s for input %d", class, i)
		}
	}

	return encodeTx(tx)
}

func utxoScript(u model.Utxo, params *chaincfg.Params) ([]byte, error) {
	if u.Script != "" {
		script, err := hex.DecodeString(u.Script)
		if err != nil {
			return nil, fmt.Errorf("invalid script for %s:%d: %w", u.TxID, u.Vout, err)
		}
		return script, nil
	}
	return addressScript(u.Address, params)
}
