// Package txengine defines the transaction construction and signing contract
// and a per-chain registry of implementations.
package txengine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

var (
	// ErrUnsupportedChain is returned when no engine is registered for a chain.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrMissingKey is returned by Sign when a required key was not supplied.
	ErrMissingKey = errors.New("missing signing key")

	// ErrInsufficientFunds is returned by Create when inputs do not cover
	// outputs plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Engine builds and signs transactions for one chain.
type Engine interface {
	// Create returns the unsigned transaction encoded for the chain.
	Create(payload model.TxPayload) (string, error)

	// SigningAddresses lists, without duplicates, the addresses whose keys
	// must sign payload.Tx.
	SigningAddresses(payload model.TxPayload) ([]string, error)

	// Sign returns the signed raw transaction.
	Sign(payload model.TxPayload, keys []model.Key) (string, error)
}

// Registry resolves engines by chain ticker.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register binds an engine to a chain, replacing any previous binding.
func (r *Registry) Register(chain string, e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[chain] = e
}

// Engine returns the engine for chain.
func (r *Registry) Engine(chain string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	return e, nil
}

// Chains lists registered chains, sorted.
func (r *Registry) Chains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]string, 0, len(r.engines))
	for c := range r.engines {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	return chains
}
