package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/config"
	"github.com/casinocoin/cscwalletd/internal/core/application"
	wsledger "github.com/casinocoin/cscwalletd/internal/infrastructure/ledger/websocket"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/notifier"
	dbbadger "github.com/casinocoin/cscwalletd/internal/infrastructure/storage/db/badger"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/walletindex"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	datadir := config.GetDatadir()
	index := walletindex.New(datadir)

	opener := dbbadger.NewStoreOpener(config.GetFlushInterval())
	walletSvc := application.NewWalletService(
		datadir, opener, index, notifier.NewLogNotifier(),
	)

	ledgerClient := wsledger.NewClient(config.GetString(config.LedgerEndpointKey))
	reconciler := application.NewReconciler(
		walletSvc, ledgerClient, notifier.NewLogNotifier(),
	)

	ctx := context.Background()

	log.Debug("starting daemon")

	if walletUUID := config.GetString(config.WalletUUIDKey); walletUUID != "" {
		if err := walletSvc.Open(ctx, walletUUID); err != nil {
			log.WithError(err).Panic("error while opening wallet")
		}
		log.Infof("wallet %s loaded", walletUUID)

		if err := ledgerClient.Connect(ctx); err != nil {
			log.WithError(err).Warn("ledger connection failed, running offline")
		} else {
			reconciler.Start()
			defer reconciler.Stop()
			defer ledgerClient.Disconnect()
		}

		defer func() {
			if err := walletSvc.Close(); err != nil {
				log.WithError(err).Warn("error while closing wallet")
			}
		}()
	} else {
		log.Info("no wallet configured, waiting for setup")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}
