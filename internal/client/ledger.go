package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Config describes how to reach the ledger service for one wallet.
type Config struct {
	BaseURL string
	Chain   string
	Network string

	// AuthKey signs every request. Nil sends unsigned requests, which the
	// service only accepts for public queries.
	AuthKey *btcec.PrivateKey

	// Timeout applies when HTTPClient is nil.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// APIError is a non-2xx reply from the ledger service.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// LedgerClient is a client for the ledger indexing service
type LedgerClient struct {
	apiURL  string
	authKey *btcec.PrivateKey
	client  *http.Client
}

// NewLedgerClient creates a new client bound to cfg.BaseURL/chain/network.
func NewLedgerClient(cfg Config) *LedgerClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &LedgerClient{
		apiURL:  fmt.Sprintf("%s/%s/%s", strings.TrimRight(cfg.BaseURL, "/"), cfg.Chain, cfg.Network),
		authKey: cfg.AuthKey,
		client:  httpClient,
	}
}

// APIURL returns the chain/network scoped base url.
func (c *LedgerClient) APIURL() string {
	return c.apiURL
}

// Authenticated reports whether requests are signed.
func (c *LedgerClient) Authenticated() bool {
	return c.authKey != nil
}

// Register announces a wallet.
func (c *LedgerClient) Register(ctx context.Context, payload model.RegisterPayload) error {
	if err := c.do(ctx, http.MethodPost, "/wallet", payload, nil); err != nil {
		return fmt.Errorf("failed to register wallet: %w", err)
	}
	return nil
}

// GetBalance gets the balance of the wallet identified by pubKey (an xpub).
func (c *LedgerClient) GetBalance(ctx context.Context, pubKey string) (model.Balance, error) {
	var balance model.Balance
	err := c.do(ctx, http.MethodGet, "/wallet/"+url.PathEscape(pubKey)+"/balance", nil, &balance)
	if err != nil {
		return model.Balance{}, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetCoins lists the wallet's outputs.
func (c *LedgerClient) GetCoins(ctx context.Context, pubKey string, includeSpent bool) ([]model.Utxo, error) {
	path := "/wallet/" + url.PathEscape(pubKey) + "/utxos?includeSpent=" + strconv.FormatBool(includeSpent)

	var utxos []model.Utxo
	if err := c.do(ctx, http.MethodGet, path, nil, &utxos); err != nil {
		return nil, fmt.Errorf("failed to get coins: %w", err)
	}
	if utxos == nil {
		utxos = []model.Utxo{}
	}
	return utxos, nil
}

// Broadcast submits a signed transaction and returns its id.
func (c *LedgerClient) Broadcast(ctx context.Context, payload model.BroadcastPayload) (string, error) {
	var resp model.BroadcastResponse
	if err := c.do(ctx, http.MethodPost, "/tx/send", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	return resp.TxID, nil
}

// ImportAddresses adds addresses to the wallet identified by pubKey.
func (c *LedgerClient) ImportAddresses(ctx context.Context, pubKey string, addresses []model.AddressEntry) error {
	if err := c.do(ctx, http.MethodPost, "/wallet/"+url.PathEscape(pubKey), addresses, nil); err != nil {
		return fmt.Errorf("failed to import addresses: %w", err)
	}
	return nil
}

func (c *LedgerClient) do(ctx context.Context, method, path string, in, out any) error {
	reqURL := c.apiURL + path

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.authKey != nil {
		sig, err := Sign(c.authKey, method, reqURL, body)
		if err != nil {
			return err
		}
		req.Header.Set(SignatureHeader, sig)
	}

	log.Debugf("%s %s", method, reqURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ledger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        reqURL,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
