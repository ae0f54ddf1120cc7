package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	WalletPath    string        `envconfig:"WALLET_PATH" required:"true"`
	WalletName    string        `envconfig:"WALLET_NAME" default:"default"`
	WalletChain   string        `envconfig:"WALLET_CHAIN" default:"BTC"`
	WalletNetwork string        `envconfig:"WALLET_NETWORK" default:"mainnet"`
	LedgerBaseURL string        `envconfig:"LEDGER_BASE_URL" default:"http://localhost:3000/api"`
	LedgerTimeout time.Duration `envconfig:"LEDGER_TIMEOUT" default:"30s"`
	UnlockOnStart bool          `envconfig:"UNLOCK_ON_START" default:"false"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile       string        `envconfig:"LOG_FILE"`
	LogMaxSizeKB  int           `envconfig:"LOG_MAX_SIZE_KB" default:"10240"`
	LogMaxFiles   int           `envconfig:"LOG_MAX_FILES" default:"3"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads a configuration from the environment without installing it.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletPath returns path to the wallet database
func GetWalletPath() string {
	return Get().WalletPath
}

// GetWalletName returns the name of the wallet the daemon serves
func GetWalletName() string {
	return Get().WalletName
}

func GetWalletChain() string {
	return Get().WalletChain
}

func GetWalletNetwork() string {
	return Get().WalletNetwork
}

// GetLedgerBaseURL returns the remote ledger service base URL
func GetLedgerBaseURL() string {
	return Get().LedgerBaseURL
}

func GetLedgerTimeout() time.Duration {
	return Get().LedgerTimeout
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	passwordBytes = raw
	return nil
}

// ReadPassword reads a non-empty password from the terminal without echo.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}

// ClearPassword wipes the in-memory password.
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}
