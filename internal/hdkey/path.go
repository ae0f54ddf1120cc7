package hdkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	ChainBTC = "BTC"
	ChainSOL = "SOL"

	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
	NetworkSignet  = "signet"

	// AuthKeyPath is the child of the account key used to sign ledger API
	// requests. It sits outside the receive (0) and change (1) branches and
	// is non-hardened so the service can derive its public half from the
	// registered xpub.
	AuthKeyPath = "m/2/0"

	// BIP44 coin types.
	coinTypeBitcoin = 0
	coinTypeTestnet = 1
	coinTypeSolana  = 501
)

// NetParams returns the parameters used for key and address encoding.
func NetParams(chain, network string) (*chaincfg.Params, error) {
	switch chain {
	case ChainBTC, ChainSOL:
	default:
		return nil, fmt.Errorf("unsupported chain %q", chain)
	}

	switch network {
	case NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	case NetworkSignet:
		return &chaincfg.SigNetParams, nil
	}

	// Non-bitcoin networks (devnet etc.) only need an xpub encoding.
	if chain == ChainSOL {
		return &chaincfg.TestNet3Params, nil
	}
	return nil, fmt.Errorf("unsupported network %q for chain %s", network, chain)
}

// PathFor returns the BIP44 account path used for a chain and network.
func PathFor(chain, network string) (string, error) {
	switch chain {
	case ChainBTC:
		if network == NetworkMainnet {
			return fmt.Sprintf("m/44'/%d'/0'", coinTypeBitcoin), nil
		}
		return fmt.Sprintf("m/44'/%d'/0'", coinTypeTestnet), nil
	case ChainSOL:
		return fmt.Sprintf("m/44'/%d'/0'", coinTypeSolana), nil
	}
	return "", fmt.Errorf("unsupported chain %q", chain)
}

// ParsePath turns "m/44'/0'/0'" into child indexes. Hardened steps may be
// written with ', h or H.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("invalid derivation path %q: must start with m", path)
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := false
		if n := len(p); n > 0 && (p[n-1] == '\'' || p[n-1] == 'h' || p[n-1] == 'H') {
			hardened = true
			p = p[:n-1]
		}

		idx, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
		}
		if idx >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("invalid derivation path %q: index %d out of range", path, idx)
		}

		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		indexes = append(indexes, uint32(idx))
	}
	return indexes, nil
}
