package model

// CreateWalletRequest represents request for POST /wallet/create
type CreateWalletRequest struct {
	Phrase              string `json:"phrase"`
	Password            string `json:"password" binding:"required"`
	PassphraseProtected bool   `json:"passphraseProtected"`
}

// CreateWalletResponse represents response for POST /wallet/create
type CreateWalletResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	XPubKey  string `json:"xPubKey"`
	Mnemonic string `json:"mnemonic,omitempty"` // only when generated by the server
}

// PasswordRequest represents request for POST /wallet/unlock
type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents request for POST /wallet/register
type RegisterRequest struct {
	BaseURL string `json:"baseUrl"`
}

// StatusResponse represents a plain success response
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	State   string `json:"state,omitempty"`
}

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	XPubKey     string `json:"xPubKey"`
	Chain       string `json:"chain"`
	Confirmed   string `json:"confirmed"`
	Unconfirmed string `json:"unconfirmed"`
	Balance     string `json:"balance"`
}

// DeriveAddressRequest represents request for POST /wallet/address
type DeriveAddressRequest struct {
	Index  uint32 `json:"index"`
	Change bool   `json:"change"`
}

// AddressResponse represents response for POST /wallet/address
type AddressResponse struct {
	Address string `json:"address"`
	Path    string `json:"path"`
	QR      string `json:"QR"` // base64 PNG
}

// RecipientRequest is a recipient with a decimal amount string
type RecipientRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// NewTxRequest represents request for POST /wallet/tx
type NewTxRequest struct {
	Recipients      []RecipientRequest `json:"recipients" binding:"required"`
	Change          string             `json:"change"`
	Fee             string             `json:"fee"`
	From            string             `json:"from"`
	RecentBlockhash string             `json:"recentBlockhash"`
}

// TxResponse carries an unsigned or signed transaction
type TxResponse struct {
	Tx string `json:"tx"`
}

// SignTxRequest represents request for POST /wallet/tx/sign
type SignTxRequest struct {
	Tx string `json:"tx" binding:"required"`
}

// BroadcastRequest represents request for POST /wallet/tx/broadcast
type BroadcastRequest struct {
	RawTx string `json:"rawTx" binding:"required"`
}

// ImportKeysRequest represents request for POST /wallet/keys/import
type ImportKeysRequest struct {
	Keys     []Key  `json:"keys" binding:"required"`
	Password string `json:"password"`
}
