package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const sealedKeyScheme = "scrypt"

// GenerateEncryptionKey returns a fresh random symmetric wallet key.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key, nil
}

// EncryptEncryptionKey seals the wallet key under a password-derived key.
// The result has the form scrypt$N$r$p$salt$nonce$ciphertext (base64 parts).
// password must be []byte for security (caller should zero it after use)
func EncryptEncryptionKey(key, password []byte, params Params) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	derived, err := scrypt.Key(password, salt, params.ScryptN, params.ScryptR, params.ScryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(derived)

	aesGCM, err := newGCM(derived)
	if err != nil {
		return "", err
	}

	ciphertext := aesGCM.Seal(nil, nonce, key, nil)

	enc := base64.StdEncoding
	return strings.Join([]string{
		sealedKeyScheme,
		strconv.Itoa(params.ScryptN),
		strconv.Itoa(params.ScryptR),
		strconv.Itoa(params.ScryptP),
		enc.EncodeToString(salt),
		enc.EncodeToString(nonce),
		enc.EncodeToString(ciphertext),
	}, "$"), nil
}

// EncryptPrivateKey seals plaintext under the wallet key. pubKey is bound to
// the ciphertext as additional data, so the blob only opens in the context of
// the same public key. Output is hex(nonce || ciphertext).
func EncryptPrivateKey(plaintext, pubKey, key []byte) (string, error) {
	if len(key) != KeyLen {
		return "", fmt.Errorf("invalid encryption key length: expected %d bytes", KeyLen)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesGCM.Seal(nonce, nonce, plaintext, pubKey)
	return hex.EncodeToString(sealed), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
