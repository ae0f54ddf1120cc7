package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/crypto"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/txengine"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// writeWalletError maps wallet errors to a status code and error code.
func writeWalletError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError

	switch {
	case wallet.IsMissingParameterError(err):
		writeError(w, http.StatusBadRequest, model.CodeMissingParameter, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, http.StatusConflict, model.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, model.CodeNotFound, err)
	case errors.Is(err, storage.ErrKeyNotFound):
		writeError(w, http.StatusNotFound, model.CodeKeyNotFound, err)
	case errors.Is(err, wallet.ErrIncorrectPassword):
		writeError(w, http.StatusUnauthorized, model.CodeIncorrectPassword, err)
	case errors.Is(err, wallet.ErrNotUnlocked):
		writeError(w, http.StatusLocked, model.CodeNotUnlocked, err)
	case errors.Is(err, crypto.ErrDecrypt):
		writeError(w, http.StatusInternalServerError, model.CodeDecrypt, err)
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, model.CodeLedger, err)
	case errors.Is(err, txengine.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrUnsupportedOperation):
		writeError(w, http.StatusBadRequest, "", err)
	default:
		writeError(w, http.StatusInternalServerError, "", err)
	}
}

// decode reads a JSON body, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return false
	}
	return true
}
