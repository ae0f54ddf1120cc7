package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/hd-wallet/docs"
	"github.com/AlexZinkM/hd-wallet/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet lifecycle
	mux.HandleFunc("/wallet/create", walletHandler.Create)
	mux.HandleFunc("/wallet/status", walletHandler.Status)
	mux.HandleFunc("/wallet/unlock", walletHandler.Unlock)
	mux.HandleFunc("/wallet/lock", walletHandler.Lock)
	mux.HandleFunc("/wallet/register", walletHandler.Register)

	// Queries and keys
	mux.HandleFunc("/wallet/balance", walletHandler.GetBalance)
	mux.HandleFunc("/wallet/utxos", walletHandler.GetUtxos)
	mux.HandleFunc("/wallet/address", walletHandler.DeriveAddress)
	mux.HandleFunc("/wallet/addresses", walletHandler.Addresses)
	mux.HandleFunc("/wallet/keys/import", walletHandler.ImportKeys)

	// Transactions
	mux.HandleFunc("/wallet/tx", walletHandler.NewTx)
	mux.HandleFunc("/wallet/tx/sign", walletHandler.SignTx)
	mux.HandleFunc("/wallet/tx/broadcast", walletHandler.Broadcast)

	return mux
}
