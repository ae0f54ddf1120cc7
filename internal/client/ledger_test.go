package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

type recordedRequest struct {
	Method    string
	URI       string
	Body      []byte
	Signature string
}

type fakeLedger struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request, body []byte)
}

func (f *fakeLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:    r.Method,
		URI:       r.URL.RequestURI(),
		Body:      body,
		Signature: r.Header.Get(SignatureHeader),
	})
	f.mu.Unlock()

	f.handler(w, r, body)
}

func newFakeLedger(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) (*fakeLedger, *httptest.Server) {
	t.Helper()

	f := &fakeLedger{handler: handler}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func TestRegisterSignsRequest(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	f, srv := newFakeLedger(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		w.WriteHeader(http.StatusOK)
	})

	c := NewLedgerClient(Config{BaseURL: srv.URL + "/api/", Chain: "BTC", Network: "mainnet", AuthKey: key})
	require.True(t, c.Authenticated())
	require.Equal(t, srv.URL+"/api/BTC/mainnet", c.APIURL())

	payload := model.RegisterPayload{Name: "W", PubKey: "xpub1", Path: "m/44'/0'/0'", Network: "mainnet", Chain: "BTC"}
	require.NoError(t, c.Register(context.Background(), payload))

	require.Len(t, f.requests, 1)
	got := f.requests[0]
	require.Equal(t, http.MethodPost, got.Method)
	require.Equal(t, "/api/BTC/mainnet/wallet", got.URI)

	var sent model.RegisterPayload
	require.NoError(t, json.Unmarshal(got.Body, &sent))
	require.Equal(t, payload, sent)

	require.NotEmpty(t, got.Signature)
	require.True(t, Verify(key.PubKey(), got.Method, got.URI, got.Body, got.Signature))

	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.False(t, Verify(other.PubKey(), got.Method, got.URI, got.Body, got.Signature))
	require.False(t, Verify(key.PubKey(), got.Method, got.URI, []byte(`{}`), got.Signature))
}

func TestGetCoinsUnspentOnly(t *testing.T) {
	utxos := []model.Utxo{{TxID: "aa", Vout: 1, Address: "addr", Value: 5000}}

	f, srv := newFakeLedger(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		json.NewEncoder(w).Encode(utxos)
	})

	c := NewLedgerClient(Config{BaseURL: srv.URL, Chain: "BTC", Network: "testnet"})
	require.False(t, c.Authenticated())

	got, err := c.GetCoins(context.Background(), "xpub1", false)
	require.NoError(t, err)
	require.Equal(t, utxos, got)

	require.Equal(t, "/BTC/testnet/wallet/xpub1/utxos?includeSpent=false", f.requests[0].URI)
	require.Empty(t, f.requests[0].Signature)
}

func TestGetBalanceAndEmptyCoins(t *testing.T) {
	_, srv := newFakeLedger(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		switch r.URL.Path {
		case "/BTC/mainnet/wallet/xpub1/balance":
			json.NewEncoder(w).Encode(model.Balance{Confirmed: 10, Unconfirmed: 5, Balance: 15})
		default:
			w.Write([]byte("null"))
		}
	})

	c := NewLedgerClient(Config{BaseURL: srv.URL, Chain: "BTC", Network: "mainnet"})

	bal, err := c.GetBalance(context.Background(), "xpub1")
	require.NoError(t, err)
	require.Equal(t, model.Balance{Confirmed: 10, Unconfirmed: 5, Balance: 15}, bal)

	coins, err := c.GetCoins(context.Background(), "xpub1", true)
	require.NoError(t, err)
	require.NotNil(t, coins)
	require.Empty(t, coins)
}

func TestBroadcastAndImport(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	f, srv := newFakeLedger(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		if r.URL.Path == "/BTC/mainnet/tx/send" {
			json.NewEncoder(w).Encode(model.BroadcastResponse{TxID: "txid1"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	c := NewLedgerClient(Config{BaseURL: srv.URL, Chain: "BTC", Network: "mainnet", AuthKey: key})

	txid, err := c.Broadcast(context.Background(), model.BroadcastPayload{Network: "mainnet", Chain: "BTC", RawTx: "0100"})
	require.NoError(t, err)
	require.Equal(t, "txid1", txid)

	entries := []model.AddressEntry{{Address: "a1"}, {Address: "a2"}}
	require.NoError(t, c.ImportAddresses(context.Background(), "xpub1", entries))

	require.Len(t, f.requests, 2)
	require.Equal(t, "/BTC/mainnet/wallet/xpub1", f.requests[1].URI)

	var sent []model.AddressEntry
	require.NoError(t, json.Unmarshal(f.requests[1].Body, &sent))
	require.Equal(t, entries, sent)

	for _, r := range f.requests {
		require.True(t, Verify(key.PubKey(), r.Method, r.URI, r.Body, r.Signature))
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	_, srv := newFakeLedger(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		http.Error(w, "wallet already registered", http.StatusConflict)
	})

	c := NewLedgerClient(Config{BaseURL: srv.URL, Chain: "BTC", Network: "mainnet"})
	err := c.Register(context.Background(), model.RegisterPayload{Name: "W"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "wallet already registered", apiErr.Body)
}

func TestSignEmptyBody(t *testing.T) {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	sig, err := Sign(key, http.MethodGet, "http://host/api/BTC/mainnet/wallet/x/balance", nil)
	require.NoError(t, err)
	require.True(t, Verify(key.PubKey(), http.MethodGet, "/api/BTC/mainnet/wallet/x/balance", []byte("{}"), sig))
	require.False(t, Verify(key.PubKey(), http.MethodGet, "/api/BTC/mainnet/wallet/x/balance", nil, "zz"))
}
