package solana

import (
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
)

// Engine builds SOL transfers. Transactions travel base64 encoded.
type Engine struct{}

var _ txengine.Engine = (*Engine)(nil)

// New creates a solana engine.
func New() *Engine {
	return &Engine{}
}

// Create builds one system transfer per recipient, paid by p.From.
// The network fee is fixed by the cluster, so p.Fee is ignored.
func (e *Engine) Create(p model.TxPayload) (string, error) {
	if len(p.Recipients) == 0 {
		return "", errors.New("no recipients")
	}

	from, err := solana.PublicKeyFromBase58(p.From)
	if err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}

	blockhash, err := solana.HashFromBase58(p.RecentBlockhash)
	if err != nil {
		return "", fmt.Errorf("invalid recent blockhash: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(p.Recipients))
	for _, r := range p.Recipients {
		to, err := solana.PublicKeyFromBase58(r.Address)
		if err != nil {
			return "", fmt.Errorf("invalid Solana address %q: %w", r.Address, err)
		}
		if r.Amount <= 0 {
			return "", fmt.Errorf("invalid amount for %s", r.Address)
		}
		instructions = append(instructions, system.NewTransferInstruction(uint64(r.Amount), from, to).Build())
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(from))
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx.ToBase64()
}

// SigningAddresses returns the accounts the message requires signatures from.
func (e *Engine) SigningAddresses(p model.TxPayload) ([]string, error) {
	tx, err := decodeTx(p.Tx)
	if err != nil {
		return nil, err
	}

	signers := signerKeys(tx)
	addrs := make([]string, 0, len(signers))
	for _, k := range signers {
		addrs = append(addrs, k.String())
	}
	return addrs, nil
}

// Sign signs p.Tx with the base58 private keys of every required signer.
func (e *Engine) Sign(p model.TxPayload, keys []model.Key) (string, error) {
	tx, err := decodeTx(p.Tx)
	if err != nil {
		return "", err
	}

	privs := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, k := range keys {
		priv, err := solana.PrivateKeyFromBase58(k.PrivKey)
		if err != nil {
			return "", fmt.Errorf("invalid key for %s: %w", k.Address, err)
		}
		privs[priv.PublicKey()] = priv
	}

	for _, signer := range signerKeys(tx) {
		if _, ok := privs[signer]; !ok {
			return "", fmt.Errorf("%w: %s", txengine.ErrMissingKey, signer)
		}
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if priv, ok := privs[key]; ok {
			return &priv
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx.ToBase64()
}

func signerKeys(tx *solana.Transaction) []solana.PublicKey {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		n = len(tx.Message.AccountKeys)
	}
	return tx.Message.AccountKeys[:n]
}

func decodeTx(raw string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction base64: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return tx, nil
}

// IsValidAddress validates a Solana address
func IsValidAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}
