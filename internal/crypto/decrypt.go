package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// ErrDecrypt is returned when a blob is corrupted, tampered with, or opened
// with the wrong key or context.
var ErrDecrypt = errors.New("failed to decrypt: blob corrupted or key mismatch")

// DecryptEncryptionKey opens a key sealed by EncryptEncryptionKey.
// password must be []byte for security (caller should zero it after use)
func DecryptEncryptionKey(sealed string, password []byte) ([]byte, error) {
	parts := strings.Split(sealed, "$")
	if len(parts) != 7 || parts[0] != sealedKeyScheme {
		return nil, fmt.Errorf("%w: malformed sealed key", ErrDecrypt)
	}

	var cost [3]int
	for i := range cost {
		v, err := strconv.Atoi(parts[i+1])
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: invalid scrypt parameter", ErrDecrypt)
		}
		cost[i] = v
	}
	if cost[0] > maxScryptN || cost[1] > maxScryptR || cost[2] > maxScryptP {
		return nil, fmt.Errorf("%w: scrypt parameters out of range", ErrDecrypt)
	}

	var decoded [3][]byte
	for i := range decoded {
		b, err := base64.StdEncoding.DecodeString(parts[i+4])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
		}
		decoded[i] = b
	}
	salt, nonce, ciphertext := decoded[0], decoded[1], decoded[2]

	derived, err := scrypt.Key(password, salt, cost[0], cost[1], cost[2], scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(derived)

	aesGCM, err := newGCM(derived)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("%w: invalid nonce", ErrDecrypt)
	}

	key, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return key, nil
}

// DecryptPrivateKey opens a blob sealed by EncryptPrivateKey with the same
// pubKey context and wallet key.
func DecryptPrivateKey(sealed string, pubKey, key []byte) ([]byte, error) {
	data, err := hex.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("invalid encryption key length: expected %d bytes", KeyLen)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesGCM.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plaintext, err := aesGCM.Open(nil, data[:ns], data[ns:], pubKey)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
