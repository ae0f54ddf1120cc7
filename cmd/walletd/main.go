// walletd serves one HD wallet over a local HTTP API.
//
// Configuration comes from the environment, see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/hd-wallet/internal/api"
	"github.com/AlexZinkM/hd-wallet/internal/config"
	"github.com/AlexZinkM/hd-wallet/internal/handler"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile, cfg.LogMaxSizeKB, cfg.LogMaxFiles); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	setLogLevels(cfg.LogLevel)

	store, err := storage.Open(config.GetWalletPath())
	if err != nil {
		return err
	}
	defer store.Close()

	walletCfg := wallet.DefaultConfig()
	walletCfg.LedgerTimeout = config.GetLedgerTimeout()

	walletHandler, err := handler.NewWalletHandler(walletCfg, store, handler.Options{
		Name:    config.GetWalletName(),
		Chain:   config.GetWalletChain(),
		Network: config.GetWalletNetwork(),
		BaseURL: config.GetLedgerBaseURL(),
	})
	if err != nil {
		return err
	}

	if cfg.UnlockOnStart {
		if err := unlockOnStart(walletHandler.Wallet()); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(walletHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		wltdLog.Infof("Listening on %s (wallet %s, %s/%s)", srv.Addr,
			config.GetWalletName(), config.GetWalletChain(), config.GetWalletNetwork())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		wltdLog.Infof("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		wltdLog.Errorf("Shutdown: %v", err)
	}

	if wlt := walletHandler.Wallet(); wlt != nil {
		wlt.Lock()
	}
	return nil
}

// unlockOnStart prompts for the password and unlocks an existing wallet.
func unlockOnStart(wlt *wallet.Wallet) error {
	if wlt == nil {
		wltdLog.Warnf("UNLOCK_ON_START set but wallet %s does not exist yet", config.GetWalletName())
		return nil
	}

	if err := config.PromptForPassword(); err != nil {
		return err
	}
	defer config.ClearPassword()

	password, err := config.GetPasswordBytes()
	if err != nil {
		return err
	}
	defer clear(password)

	return wlt.Unlock(password)
}
