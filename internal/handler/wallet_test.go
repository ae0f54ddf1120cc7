package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type stubLedger struct {
	balance model.Balance
}

func (s *stubLedger) Register(context.Context, model.RegisterPayload) error { return nil }

func (s *stubLedger) GetBalance(context.Context, string) (model.Balance, error) {
	return s.balance, nil
}

func (s *stubLedger) GetCoins(context.Context, string, bool) ([]model.Utxo, error) {
	return []model.Utxo{}, nil
}

func (s *stubLedger) Broadcast(context.Context, model.BroadcastPayload) (string, error) {
	return "txid-1", nil
}

func (s *stubLedger) ImportAddresses(context.Context, string, []model.AddressEntry) error {
	return nil
}

func newTestHandler(t *testing.T) (*WalletHandler, *stubLedger) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger := &stubLedger{}
	cfg := wallet.DefaultConfig()
	cfg.Crypto = crypto.LightParams
	cfg.NewLedger = func(client.Config) wallet.Ledger { return ledger }

	h, err := NewWalletHandler(cfg, store, Options{Name: "main", Chain: "BTC", Network: "mainnet"})
	require.NoError(t, err)
	return h, ledger
}

func do(t *testing.T, fn http.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestStatusBeforeCreate(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h.Status, http.MethodGet, "/wallet/status", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, model.CodeNotFound, decodeBody[model.ErrorResponse](t, rec).Code)

	rec = do(t, h.Status, http.MethodPost, "/wallet/status", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateAndLifecycle(t *testing.T) {
	h, ledger := newTestHandler(t)

	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{
		Phrase:   testPhrase,
		Password: "p1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody[model.CreateWalletResponse](t, rec)
	require.True(t, created.Success)
	require.NotEmpty(t, created.XPubKey)
	require.Empty(t, created.Mnemonic)

	rec = do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase, Password: "p1"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h.Lock, http.MethodPost, "/wallet/lock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "locked", decodeBody[model.StatusResponse](t, rec).State)

	rec = do(t, h.SignTx, http.MethodPost, "/wallet/tx/sign", model.SignTxRequest{Tx: "00"})
	require.Equal(t, http.StatusLocked, rec.Code)
	require.Equal(t, model.CodeNotUnlocked, decodeBody[model.ErrorResponse](t, rec).Code)

	rec = do(t, h.Unlock, http.MethodPost, "/wallet/unlock", model.PasswordRequest{Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, model.CodeIncorrectPassword, decodeBody[model.ErrorResponse](t, rec).Code)

	rec = do(t, h.Unlock, http.MethodPost, "/wallet/unlock", model.PasswordRequest{Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	ledger.balance = model.Balance{Confirmed: 150000000, Unconfirmed: 2500, Balance: 150002500}
	rec = do(t, h.GetBalance, http.MethodGet, "/wallet/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decodeBody[model.BalanceResponse](t, rec)
	require.Equal(t, "1.50000000", balance.Confirmed)
	require.Equal(t, "0.00002500", balance.Unconfirmed)
	require.Equal(t, created.XPubKey, balance.XPubKey)
}

func TestCreateGeneratesMnemonic(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, bytes.Fields([]byte(decodeBody[model.CreateWalletResponse](t, rec).Mnemonic)), 24)
}

func TestCreateMissingPassword(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, model.CodeMissingParameter, decodeBody[model.ErrorResponse](t, rec).Code)
}

func TestDeriveAddressAndList(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase, Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.DeriveAddress, http.MethodPost, "/wallet/address", model.DeriveAddressRequest{Index: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	addr := decodeBody[model.AddressResponse](t, rec)
	require.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", addr.Address)
	require.Equal(t, "m/0/0", addr.Path)

	png, err := base64.StdEncoding.DecodeString(addr.QR)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	rec = do(t, h.Addresses, http.MethodGet, "/wallet/addresses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{addr.Address}, decodeBody[[]string](t, rec))
}

func TestImportKeysLockedReportsPlaintext(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase, Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	h.Wallet().Lock()

	rec = do(t, h.ImportKeys, http.MethodPost, "/wallet/keys/import", model.ImportKeysRequest{
		Keys: []model.Key{{Address: "addr", PrivKey: "priv"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[model.StatusResponse](t, rec)
	require.Contains(t, resp.Message, "without encryption")
	require.Equal(t, "locked", resp.State)
}

func TestNewTxInvalidAmount(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase, Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.NewTx, http.MethodPost, "/wallet/tx", model.NewTxRequest{
		Recipients: []model.RecipientRequest{{Address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", Amount: "abc"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The stub ledger has no coins.
	rec = do(t, h.NewTx, http.MethodPost, "/wallet/tx", model.NewTxRequest{
		Recipients: []model.RecipientRequest{{Address: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", Amount: "0.001"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBroadcast(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h.Create, http.MethodPost, "/wallet/create", model.CreateWalletRequest{Phrase: testPhrase, Password: "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h.Broadcast, http.MethodPost, "/wallet/tx/broadcast", model.BroadcastRequest{RawTx: "00"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "txid-1", decodeBody[model.BroadcastResponse](t, rec).TxID)
}

func TestLedgerErrorMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	writeWalletError(rec, &client.APIError{StatusCode: 500, Body: "boom"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, model.CodeLedger, decodeBody[model.ErrorResponse](t, rec).Code)

	rec = httptest.NewRecorder()
	writeWalletError(rec, storage.ErrKeyNotFound)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, model.CodeKeyNotFound, decodeBody[model.ErrorResponse](t, rec).Code)

	rec = httptest.NewRecorder()
	writeWalletError(rec, crypto.ErrDecrypt)
	require.Equal(t, model.CodeDecrypt, decodeBody[model.ErrorResponse](t, rec).Code)
}
