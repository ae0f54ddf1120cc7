package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/AlexZinkM/hd-wallet/internal/common"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

// Options select the wallet a WalletHandler serves.
type Options struct {
	Name    string
	Chain   string
	Network string
	BaseURL string
}

// WalletHandler serves one named wallet from an open key store
type WalletHandler struct {
	cfg   wallet.Config
	store wallet.KeyStore
	opts  Options

	mu     sync.RWMutex
	wallet *wallet.Wallet
}

// NewWalletHandler creates a handler and loads the wallet if it already exists
func NewWalletHandler(cfg wallet.Config, store wallet.KeyStore, opts Options) (*WalletHandler, error) {
	if opts.Name == "" {
		return nil, errors.New("wallet name not set")
	}

	h := &WalletHandler{cfg: cfg, store: store, opts: opts}

	wlt, err := wallet.LoadFromStore(cfg, store, opts.Name)
	switch {
	case err == nil:
		h.wallet = wlt
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, err
	}
	return h, nil
}

// Wallet returns the served wallet, nil before creation.
func (h *WalletHandler) Wallet() *wallet.Wallet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.wallet
}

func (h *WalletHandler) current() (*wallet.Wallet, error) {
	if wlt := h.Wallet(); wlt != nil {
		return wlt, nil
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, h.opts.Name)
}

// Create handles POST /wallet/create
// @Summary      Create wallet
// @Description  Creates the wallet from a mnemonic, generating one when the phrase is empty. A generated mnemonic is returned once.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  true  "Creation data"
// @Success      200      {object}  model.CreateWalletResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateWalletRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	generated := ""
	if req.Phrase == "" {
		mnemonic, err := hdkey.NewMnemonic()
		if err != nil {
			writeWalletError(w, err)
			return
		}
		req.Phrase = mnemonic
		generated = mnemonic
	}

	path, err := hdkey.PathFor(h.opts.Chain, h.opts.Network)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	wlt, err := wallet.CreateInStore(r.Context(), h.cfg, h.store, wallet.CreateParams{
		Chain:               h.opts.Chain,
		Network:             h.opts.Network,
		Name:                h.opts.Name,
		Path:                path,
		Phrase:              req.Phrase,
		Password:            password,
		PassphraseProtected: req.PassphraseProtected,
		BaseURL:             h.opts.BaseURL,
	})
	if wlt != nil {
		h.wallet = wlt
	}
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CreateWalletResponse{
		Success:  true,
		Message:  "Wallet created successfully",
		XPubKey:  wlt.XPubKey(),
		Mnemonic: generated,
	})
}

// Status handles GET /wallet/status
// @Summary      Wallet state
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/status [get]
func (h *WalletHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{
		Success: true,
		Message: wlt.XPubKey(),
		State:   wlt.State().String(),
	})
}

// Unlock handles POST /wallet/unlock
// @Summary      Unlock wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.PasswordRequest  true  "Password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	if err := wlt.Unlock(password); err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Wallet unlocked", State: wlt.State().String()})
}

// Lock handles POST /wallet/lock
// @Summary      Lock wallet
// @Description  Wipes decrypted key material from memory
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/lock [post]
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	wlt.Lock()
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Wallet locked", State: wlt.State().String()})
}

// Register handles POST /wallet/register
// @Summary      Register wallet with the ledger service
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterRequest  false  "New base URL"
// @Success      200      {object}  model.StatusResponse
// @Failure      423      {object}  model.ErrorResponse
// @Router       /wallet/register [post]
func (h *WalletHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RegisterRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	if err := wlt.Register(r.Context(), req.BaseURL); err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Wallet registered"})
}

// GetBalance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	balance, err := wlt.GetBalance(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}

	chain := wlt.Identity().Chain
	resp := model.BalanceResponse{XPubKey: wlt.XPubKey(), Chain: chain}
	for _, f := range []struct {
		dst *string
		v   int64
	}{
		{&resp.Confirmed, balance.Confirmed},
		{&resp.Unconfirmed, balance.Unconfirmed},
		{&resp.Balance, balance.Balance},
	} {
		if *f.dst, err = common.FormatUnits(chain, f.v); err != nil {
			writeWalletError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUtxos handles GET /wallet/utxos
// @Summary      List unspent outputs
// @Tags         wallet
// @Produce      json
// @Success      200  {array}  model.Utxo
// @Router       /wallet/utxos [get]
func (h *WalletHandler) GetUtxos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	utxos, err := wlt.GetUtxos(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, utxos)
}

// DeriveAddress handles POST /wallet/address
// @Summary      Derive address
// @Description  Derives a receive or change address, stores its key and returns it with a QR code
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeriveAddressRequest  true  "Index and branch"
// @Success      200      {object}  model.AddressResponse
// @Router       /wallet/address [post]
func (h *WalletHandler) DeriveAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.DeriveAddressRequest
	if !decode(w, r, &req) {
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	key, err := wlt.DeriveAddress(r.Context(), req.Index, req.Change)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	qr, err := generateQRCode(key.Address)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AddressResponse{Address: key.Address, Path: key.Path, QR: qr})
}

// Addresses handles GET /wallet/addresses
// @Summary      List addresses with stored keys
// @Tags         wallet
// @Produce      json
// @Success      200  {array}  string
// @Router       /wallet/addresses [get]
func (h *WalletHandler) Addresses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	addrs, err := wlt.Addresses()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	if addrs == nil {
		addrs = []string{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

// NewTx handles POST /wallet/tx
// @Summary      Build unsigned transaction
// @Description  Amounts and fee are decimal coin strings
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      model.NewTxRequest  true  "Transaction data"
// @Success      200      {object}  model.TxResponse
// @Router       /wallet/tx [post]
func (h *WalletHandler) NewTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.NewTxRequest
	if !decode(w, r, &req) {
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	chain := wlt.Identity().Chain

	params := wallet.NewTxParams{
		Change:          req.Change,
		From:            req.From,
		RecentBlockhash: req.RecentBlockhash,
	}
	for _, rcpt := range req.Recipients {
		amount, err := common.ParseUnits(chain, rcpt.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "", err)
			return
		}
		params.Recipients = append(params.Recipients, model.Recipient{Address: rcpt.Address, Amount: amount})
	}
	if req.Fee != "" {
		if params.Fee, err = common.ParseUnits(chain, req.Fee); err != nil {
			writeError(w, http.StatusBadRequest, "", err)
			return
		}
	}
	// Account based chains spend no utxos.
	if chain == hdkey.ChainSOL {
		params.Utxos = []model.Utxo{}
	}

	tx, err := wlt.NewTx(r.Context(), params)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TxResponse{Tx: tx})
}

// SignTx handles POST /wallet/tx/sign
// @Summary      Sign transaction
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignTxRequest  true  "Unsigned transaction"
// @Success      200      {object}  model.TxResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      423      {object}  model.ErrorResponse
// @Router       /wallet/tx/sign [post]
func (h *WalletHandler) SignTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignTxRequest
	if !decode(w, r, &req) {
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}

	params := wallet.SignTxParams{Tx: req.Tx}
	if wlt.Identity().Chain == hdkey.ChainSOL {
		params.Utxos = []model.Utxo{}
	}

	signed, err := wlt.SignTx(r.Context(), params)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TxResponse{Tx: signed})
}

// Broadcast handles POST /wallet/tx/broadcast
// @Summary      Broadcast signed transaction
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      model.BroadcastRequest  true  "Signed transaction"
// @Success      200      {object}  model.BroadcastResponse
// @Router       /wallet/tx/broadcast [post]
func (h *WalletHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.BroadcastRequest
	if !decode(w, r, &req) {
		return
	}

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	txid, err := wlt.Broadcast(r.Context(), req.RawTx)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BroadcastResponse{TxID: txid})
}

// ImportKeys handles POST /wallet/keys/import
// @Summary      Import signing keys
// @Description  Without a password on a locked wallet the keys are stored unencrypted
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportKeysRequest  true  "Keys"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/keys/import [post]
func (h *WalletHandler) ImportKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportKeysRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	wlt, err := h.current()
	if err != nil {
		writeWalletError(w, err)
		return
	}
	if err := wlt.ImportKeys(r.Context(), req.Keys, password); err != nil {
		writeWalletError(w, err)
		return
	}

	msg := fmt.Sprintf("Imported %d keys", len(req.Keys))
	if wlt.State() == wallet.Locked {
		msg += " without encryption"
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: msg, State: wlt.State().String()})
}
