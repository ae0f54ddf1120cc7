// walletctl manages an HD wallet store from the command line.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/AlexZinkM/hd-wallet/internal/config"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[walletctl] %v\n", err)
	os.Exit(1)
}

func printJSON(resp interface{}) {
	b, err := json.Marshal(resp)
	if err != nil {
		fatal(err)
	}

	var out bytes.Buffer
	json.Indent(&out, b, "", "    ")
	out.WriteString("\n")
	out.WriteTo(os.Stdout)
}

// openWallet loads the wallet named by the global flags, Locked.
func openWallet(ctx *cli.Context) (*wallet.Wallet, error) {
	cfg := wallet.DefaultConfig()
	cfg.LedgerTimeout = ctx.GlobalDuration("ledger_timeout")
	return wallet.Load(cfg, ctx.GlobalString("db"), ctx.GlobalString("name"))
}

// unlockWallet prompts for the password and unlocks wlt.
func unlockWallet(wlt *wallet.Wallet) error {
	password, err := readCurrentPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	return wlt.Unlock(password)
}

func readCurrentPassword() ([]byte, error) {
	return config.ReadPassword("Enter wallet password: ")
}

// readNewPassword prompts twice for a new password.
func readNewPassword() ([]byte, error) {
	password, err := config.ReadPassword("Enter new wallet password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := config.ReadPassword("Confirm password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(confirm)

	if !bytes.Equal(password, confirm) {
		clear(password)
		return nil, fmt.Errorf("passwords don't match")
	}
	return password, nil
}

func main() {
	app := cli.NewApp()
	app.Name = "walletctl"
	app.Usage = "manage an HD wallet key store"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			EnvVar: "WALLET_PATH",
			Value:  "wallet.db",
			Usage:  "path to the wallet database",
		},
		cli.StringFlag{
			Name:   "name",
			EnvVar: "WALLET_NAME",
			Value:  "default",
			Usage:  "wallet name",
		},
		cli.StringFlag{
			Name:   "chain",
			EnvVar: "WALLET_CHAIN",
			Value:  "BTC",
			Usage:  "chain ticker of a new wallet (BTC, SOL)",
		},
		cli.StringFlag{
			Name:   "network",
			EnvVar: "WALLET_NETWORK",
			Value:  "mainnet",
			Usage:  "network of a new wallet",
		},
		cli.StringFlag{
			Name:   "ledger",
			EnvVar: "LEDGER_BASE_URL",
			Value:  "http://localhost:3000/api",
			Usage:  "ledger service base url of a new wallet",
		},
		cli.DurationFlag{
			Name:   "ledger_timeout",
			EnvVar: "LEDGER_TIMEOUT",
			Usage:  "timeout of ledger requests",
		},
	}
	app.Commands = []cli.Command{
		createCommand,
		registerCommand,
		changePasswordCommand,
		balanceCommand,
		listUnspentCommand,
		newAddressCommand,
		listAddressesCommand,
		importKeysCommand,
		newTxCommand,
		signTxCommand,
		broadcastCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
