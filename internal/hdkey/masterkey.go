package hdkey

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

// MasterKey is the wallet's account-level HD key pair. Its JSON form is what
// gets sealed into the wallet record.
type MasterKey struct {
	XPrivKey string `json:"xprivkey"`
	XPubKey  string `json:"xpubkey"`
	PubKey   string `json:"publicKey"`

	key *hdkeychain.ExtendedKey
}

// FromMnemonic derives the account key at path from a BIP39 phrase.
func FromMnemonic(phrase, passphrase string, params *chaincfg.Params, path string) (*MasterKey, error) {
	seed, err := seedFromMnemonic(phrase, passphrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	root, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	defer root.Zero()

	account, err := derive(root, path)
	if err != nil {
		return nil, err
	}
	return newMasterKey(account)
}

// Parse rebuilds a MasterKey from its serialized form.
func Parse(data []byte) (*MasterKey, error) {
	var m MasterKey
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal master key: %w", err)
	}

	key, err := hdkeychain.NewKeyFromString(m.XPrivKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xprivkey: %w", err)
	}
	if !key.IsPrivate() {
		return nil, errors.New("master key is not private")
	}

	parsed, err := newMasterKey(key)
	if err != nil {
		return nil, err
	}
	if parsed.XPubKey != m.XPubKey || parsed.PubKey != m.PubKey {
		parsed.Zero()
		return nil, errors.New("master key public fields do not match xprivkey")
	}
	return parsed, nil
}

func newMasterKey(key *hdkeychain.ExtendedKey) (*MasterKey, error) {
	pub, err := key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("failed to neuter key: %w", err)
	}
	ecPub, err := key.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	return &MasterKey{
		XPrivKey: key.String(),
		XPubKey:  pub.String(),
		PubKey:   hex.EncodeToString(ecPub.SerializeCompressed()),
		key:      key,
	}, nil
}

// Marshal serializes the key object for sealing.
func (m *MasterKey) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Derive returns the child at a path relative to this key ("m/0/5").
func (m *MasterKey) Derive(path string) (*hdkeychain.ExtendedKey, error) {
	if m.key == nil {
		return nil, errors.New("master key is zeroed")
	}
	return derive(m.key, path)
}

// AuthSigningKey derives the key used to authenticate ledger API requests.
func (m *MasterKey) AuthSigningKey() (*btcec.PrivateKey, error) {
	child, err := m.Derive(AuthKeyPath)
	if err != nil {
		return nil, err
	}
	defer child.Zero()

	return child.ECPrivKey()
}

// AddressKey derives the P2PKH receive (change=false) or change key at index.
func (m *MasterKey) AddressKey(index uint32, change bool, params *chaincfg.Params) (model.Key, error) {
	branch := 0
	if change {
		branch = 1
	}
	path := fmt.Sprintf("m/%d/%d", branch, index)

	child, err := m.Derive(path)
	if err != nil {
		return model.Key{}, err
	}
	defer child.Zero()

	priv, err := child.ECPrivKey()
	if err != nil {
		return model.Key{}, fmt.Errorf("failed to get private key: %w", err)
	}
	pubBytes := priv.PubKey().SerializeCompressed()

	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubBytes), params)
	if err != nil {
		return model.Key{}, fmt.Errorf("failed to encode address: %w", err)
	}
	wif, err := btcutil.NewWIF(priv, params, true)
	if err != nil {
		return model.Key{}, fmt.Errorf("failed to encode WIF: %w", err)
	}

	return model.Key{
		Address: addr.EncodeAddress(),
		PubKey:  hex.EncodeToString(pubBytes),
		PrivKey: wif.String(),
		Path:    path,
	}, nil
}

// Zero wipes the private key material.
func (m *MasterKey) Zero() {
	if m.key != nil {
		m.key.Zero()
		m.key = nil
	}
	m.XPrivKey = ""
}

// zeroKey wipes an extended key. Tests replace it to observe wiping.
var zeroKey = (*hdkeychain.ExtendedKey).Zero

// derive walks path from key. Intermediate keys are wiped; key itself and
// the returned child are left to the caller.
func derive(key *hdkeychain.ExtendedKey, path string) (*hdkeychain.ExtendedKey, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	if len(indexes) == 0 {
		return hdkeychain.NewKeyFromString(key.String())
	}

	current := key
	for _, idx := range indexes {
		next, err := current.Derive(idx)
		if current != key {
			zeroKey(current)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", path, err)
		}
		current = next
	}
	return current, nil
}
