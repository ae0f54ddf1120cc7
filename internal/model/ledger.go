package model

// Utxo is an unspent output as reported by the ledger service.
type Utxo struct {
	TxID    string `json:"mintTxid"`
	Vout    uint32 `json:"mintIndex"`
	Address string `json:"address"`
	Script  string `json:"script"`
	Value   int64  `json:"value"`
	Height  int64  `json:"mintHeight,omitempty"`
	Spent   bool   `json:"spent,omitempty"`
}

// Balance in base units (satoshi, lamports).
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
	Balance     int64 `json:"balance"`
}

// RegisterPayload announces a wallet to the ledger service.
type RegisterPayload struct {
	Name    string `json:"name"`
	PubKey  string `json:"pubKey"`
	Path    string `json:"path"`
	Network string `json:"network"`
	Chain   string `json:"chain"`
}

// BroadcastPayload wraps a raw signed transaction.
type BroadcastPayload struct {
	Network string `json:"network"`
	Chain   string `json:"chain"`
	RawTx   string `json:"rawTx"`
}

// BroadcastResponse is the ledger reply to a broadcast.
type BroadcastResponse struct {
	TxID string `json:"txid"`
}

// AddressEntry is one element of an address import.
type AddressEntry struct {
	Address string `json:"address"`
}

// Recipient is a transaction output target in base units.
type Recipient struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// TxPayload is passed unchanged to a transaction engine. Tx is set for
// signing and carries the engine's encoding of the unsigned transaction.
type TxPayload struct {
	Network         string      `json:"network"`
	Chain           string      `json:"chain"`
	Recipients      []Recipient `json:"recipients,omitempty"`
	Utxos           []Utxo      `json:"utxos,omitempty"`
	Change          string      `json:"change,omitempty"`
	Fee             int64       `json:"fee,omitempty"`
	From            string      `json:"from,omitempty"`
	RecentBlockhash string      `json:"recentBlockhash,omitempty"`
	Tx              string      `json:"tx,omitempty"`
}
