package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/AlexZinkM/hd-wallet/internal/common"
	"github.com/AlexZinkM/hd-wallet/internal/hdkey"
	"github.com/AlexZinkM/hd-wallet/internal/model"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

var createCommand = cli.Command{
	Name:     "create",
	Category: "Wallet",
	Usage:    "Create a wallet from a new or existing mnemonic.",
	Description: `
	Create a wallet in the database, unlock it and register it with the
	ledger service. Without --mnemonic a new 24 word phrase is generated
	and printed once. Write it down: it is the only backup of the keys.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "mnemonic",
			Usage: "existing BIP39 phrase to restore from",
		},
		cli.BoolFlag{
			Name: "passphrase_protected",
			Usage: "also use the password as the BIP39 passphrase. " +
				"The same password is then needed to restore " +
				"from the mnemonic",
		},
	},
	Action: create,
}

func create(ctx *cli.Context) error {
	phrase := ctx.String("mnemonic")
	generated := phrase == ""
	if generated {
		var err error
		if phrase, err = hdkey.NewMnemonic(); err != nil {
			return err
		}
	}

	chain := strings.ToUpper(ctx.GlobalString("chain"))
	network := ctx.GlobalString("network")
	path, err := hdkey.PathFor(chain, network)
	if err != nil {
		return err
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	cfg := wallet.DefaultConfig()
	cfg.LedgerTimeout = ctx.GlobalDuration("ledger_timeout")

	wlt, err := wallet.Create(context.Background(), cfg, ctx.GlobalString("db"), wallet.CreateParams{
		Chain:               chain,
		Network:             network,
		Name:                ctx.GlobalString("name"),
		Path:                path,
		Phrase:              phrase,
		Password:            password,
		PassphraseProtected: ctx.Bool("passphrase_protected"),
		BaseURL:             ctx.GlobalString("ledger"),
	})
	if wlt != nil {
		defer wlt.Close()
	}
	if generated && wlt != nil {
		fmt.Printf("Mnemonic (shown once):\n\n%s\n\n", phrase)
	}
	if err != nil {
		return err
	}

	printJSON(model.CreateWalletResponse{
		Success: true,
		Message: "Wallet created successfully",
		XPubKey: wlt.XPubKey(),
	})
	return nil
}

var registerCommand = cli.Command{
	Name:     "register",
	Category: "Wallet",
	Usage:    "Register the wallet with the ledger service.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "base_url",
			Usage: "persist and use a new ledger base url",
		},
	},
	Action: register,
}

func register(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	if err := unlockWallet(wlt); err != nil {
		return err
	}
	if err := wlt.Register(context.Background(), ctx.String("base_url")); err != nil {
		return err
	}

	printJSON(model.StatusResponse{Success: true, Message: "Wallet registered at " + wlt.BaseURL()})
	return nil
}

var changePasswordCommand = cli.Command{
	Name:     "changepassword",
	Category: "Wallet",
	Usage:    "Change the wallet password.",
	Action:   changePassword,
}

func changePassword(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	current, err := readCurrentPassword()
	if err != nil {
		return err
	}
	defer clear(current)

	next, err := readNewPassword()
	if err != nil {
		return err
	}
	defer clear(next)

	if err := wlt.ChangePassword(current, next); err != nil {
		return err
	}

	printJSON(model.StatusResponse{Success: true, Message: "Password changed"})
	return nil
}

var balanceCommand = cli.Command{
	Name:     "balance",
	Category: "Ledger",
	Usage:    "Show the wallet balance. Does not need the password.",
	Action:   balance,
}

func balance(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	b, err := wlt.GetBalance(context.Background())
	if err != nil {
		return err
	}

	chain := wlt.Identity().Chain
	resp := model.BalanceResponse{XPubKey: wlt.XPubKey(), Chain: chain}
	if resp.Confirmed, err = common.FormatUnits(chain, b.Confirmed); err != nil {
		return err
	}
	if resp.Unconfirmed, err = common.FormatUnits(chain, b.Unconfirmed); err != nil {
		return err
	}
	if resp.Balance, err = common.FormatUnits(chain, b.Balance); err != nil {
		return err
	}

	printJSON(resp)
	return nil
}

var listUnspentCommand = cli.Command{
	Name:     "listunspent",
	Category: "Ledger",
	Usage:    "List the wallet's unspent outputs.",
	Action:   listUnspent,
}

func listUnspent(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	utxos, err := wlt.GetUtxos(context.Background())
	if err != nil {
		return err
	}
	printJSON(utxos)
	return nil
}

var newAddressCommand = cli.Command{
	Name:      "newaddress",
	Category:  "Addresses",
	Usage:     "Derive a receive or change address.",
	ArgsUsage: "index",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "change",
			Usage: "derive from the change branch",
		},
	},
	Action: newAddress,
}

func newAddress(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "newaddress")
	}
	var index uint32
	if _, err := fmt.Sscanf(ctx.Args().First(), "%d", &index); err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}

	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	if err := unlockWallet(wlt); err != nil {
		return err
	}
	key, err := wlt.DeriveAddress(context.Background(), index, ctx.Bool("change"))
	if err != nil {
		return err
	}

	printJSON(model.AddressResponse{Address: key.Address, Path: key.Path})
	return nil
}

var listAddressesCommand = cli.Command{
	Name:     "listaddresses",
	Category: "Addresses",
	Usage:    "List addresses with a stored key.",
	Action:   listAddresses,
}

func listAddresses(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	addrs, err := wlt.Addresses()
	if err != nil {
		return err
	}
	printJSON(addrs)
	return nil
}

var importKeysCommand = cli.Command{
	Name:      "importkeys",
	Category:  "Addresses",
	Usage:     "Import signing keys from a JSON file.",
	ArgsUsage: "keys.json",
	Description: `
	Import a JSON array of {"address", "pubKey", "privKey"} objects.

	With --unlock the keys are encrypted and announced to the ledger.
	Without it they are stored UNENCRYPTED and not announced.
	`,
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "unlock",
			Usage: "prompt for the password and encrypt the keys",
		},
	},
	Action: importKeys,
}

func importKeys(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "importkeys")
	}

	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	var keys []model.Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("failed to parse keys file: %w", err)
	}

	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	var password []byte
	if ctx.Bool("unlock") {
		if password, err = readCurrentPassword(); err != nil {
			return err
		}
		defer clear(password)
	} else {
		fmt.Fprintln(os.Stderr, "WARNING: keys will be stored unencrypted")
	}

	if err := wlt.ImportKeys(context.Background(), keys, password); err != nil {
		return err
	}

	printJSON(model.StatusResponse{
		Success: true,
		Message: fmt.Sprintf("Imported %d keys", len(keys)),
		State:   wlt.State().String(),
	})
	return nil
}

var newTxCommand = cli.Command{
	Name:     "newtx",
	Category: "Transactions",
	Usage:    "Build an unsigned transaction.",
	Flags: []cli.Flag{
		cli.StringSliceFlag{
			Name:  "to",
			Usage: "recipient as address=amount in coins, repeatable",
		},
		cli.StringFlag{
			Name:  "change",
			Usage: "change address (utxo chains)",
		},
		cli.StringFlag{
			Name:  "fee",
			Usage: "fee in coins (utxo chains)",
		},
		cli.StringFlag{
			Name:  "from",
			Usage: "sender and fee payer (solana)",
		},
		cli.StringFlag{
			Name:  "blockhash",
			Usage: "recent blockhash (solana)",
		},
	},
	Action: newTx,
}

func newTx(ctx *cli.Context) error {
	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	chain := wlt.Identity().Chain
	recipients, err := parseRecipients(chain, ctx.StringSlice("to"))
	if err != nil {
		return err
	}

	params := wallet.NewTxParams{
		Recipients:      recipients,
		Change:          ctx.String("change"),
		From:            ctx.String("from"),
		RecentBlockhash: ctx.String("blockhash"),
	}
	if fee := ctx.String("fee"); fee != "" {
		if params.Fee, err = common.ParseUnits(chain, fee); err != nil {
			return err
		}
	}
	if chain == hdkey.ChainSOL {
		params.Utxos = []model.Utxo{}
	}

	tx, err := wlt.NewTx(context.Background(), params)
	if err != nil {
		return err
	}
	printJSON(model.TxResponse{Tx: tx})
	return nil
}

// parseRecipients parses address=amount pairs with decimal coin amounts.
func parseRecipients(chain string, args []string) ([]model.Recipient, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one --to is required")
	}

	recipients := make([]model.Recipient, 0, len(args))
	for _, arg := range args {
		addr, amount, ok := strings.Cut(arg, "=")
		if !ok || addr == "" {
			return nil, fmt.Errorf("invalid recipient %q: want address=amount", arg)
		}
		value, err := common.ParseUnits(chain, amount)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, model.Recipient{Address: addr, Amount: value})
	}
	return recipients, nil
}

var signTxCommand = cli.Command{
	Name:      "signtx",
	Category:  "Transactions",
	Usage:     "Sign a transaction built by newtx.",
	ArgsUsage: "tx",
	Action:    signTx,
}

func signTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "signtx")
	}

	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	if err := unlockWallet(wlt); err != nil {
		return err
	}

	params := wallet.SignTxParams{Tx: ctx.Args().First()}
	if wlt.Identity().Chain == hdkey.ChainSOL {
		params.Utxos = []model.Utxo{}
	}

	signed, err := wlt.SignTx(context.Background(), params)
	if err != nil {
		return err
	}
	printJSON(model.TxResponse{Tx: signed})
	return nil
}

var broadcastCommand = cli.Command{
	Name:      "broadcast",
	Category:  "Transactions",
	Usage:     "Broadcast a signed transaction.",
	ArgsUsage: "rawtx",
	Action:    broadcast,
}

func broadcast(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "broadcast")
	}

	wlt, err := openWallet(ctx)
	if err != nil {
		return err
	}
	defer wlt.Close()

	txid, err := wlt.Broadcast(context.Background(), ctx.Args().First())
	if err != nil {
		return err
	}
	printJSON(model.BroadcastResponse{TxID: txid})
	return nil
}
