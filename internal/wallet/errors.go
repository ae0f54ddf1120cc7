package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrIncorrectPassword is returned when a password does not match the
	// stored credential.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrNotUnlocked is returned by operations that need decrypted key
	// material while the wallet is locked.
	ErrNotUnlocked = errors.New("wallet is not unlocked")

	// ErrUnsupportedOperation is returned when the wallet's chain cannot
	// serve a request, such as HD address derivation on solana.
	ErrUnsupportedOperation = errors.New("operation not supported for chain")
)

// MissingParameterError reports a required input that was empty.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter: %s", e.Param)
}

// IsMissingParameterError checks if the error is a MissingParameterError
func IsMissingParameterError(err error) bool {
	var mpe *MissingParameterError
	return errors.As(err, &mpe)
}
