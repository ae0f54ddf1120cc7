package hdkey

import (
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for phrases that fail the BIP39 checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// NewMnemonic generates a new 24-word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256) // 256 bits = 24 words
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// seedFromMnemonic validates phrase and derives the BIP39 seed. passphrase
// may be empty.
func seedFromMnemonic(phrase, passphrase string) ([]byte, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(phrase, passphrase), nil
}
