package client

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SignatureHeader carries the request signature.
const SignatureHeader = "x-signature"

// signedMessage is "METHOD|/path?query|body". An empty body signs as "{}".
func signedMessage(method, rawURL string, body []byte) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	payload := string(body)
	if payload == "" {
		payload = "{}"
	}
	return strings.Join([]string{method, target, payload}, "|"), nil
}

// Sign returns the hex DER signature over the double-SHA256 of the signed
// message for a request.
func Sign(key *btcec.PrivateKey, method, rawURL string, body []byte) (string, error) {
	msg, err := signedMessage(method, rawURL, body)
	if err != nil {
		return "", err
	}
	hash := chainhash.DoubleHashB([]byte(msg))
	return hex.EncodeToString(ecdsa.Sign(key, hash).Serialize()), nil
}

// Verify checks a request signature against a public key. It is what the
// ledger service runs on its side.
func Verify(pub *btcec.PublicKey, method, rawURL string, body []byte, sigHex string) bool {
	msg, err := signedMessage(method, rawURL, body)
	if err != nil {
		return false
	}
	raw, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return false
	}
	return sig.Verify(chainhash.DoubleHashB([]byte(msg)), pub)
}
