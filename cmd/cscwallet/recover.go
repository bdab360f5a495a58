package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/casinocoin/cscwalletd/config"
	"github.com/casinocoin/cscwalletd/internal/core/application"
	"github.com/casinocoin/cscwalletd/internal/core/domain"
	wsledger "github.com/casinocoin/cscwalletd/internal/infrastructure/ledger/websocket"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/notifier"
	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

var recoverwallet = cli.Command{
	Name:  "recover",
	Usage: "rebuild a wallet from a recovery mnemonic by scanning the ledger",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "mnemonic",
			Usage:    "space separated recovery words",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "wallet password",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "email",
			Usage: "owner email, part of the key encryption secret",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "ledger server websocket endpoint",
			Value: config.GetString(config.LedgerEndpointKey),
		},
	},
	Action: recoverAction,
}

func recoverAction(ctx *cli.Context) error {
	mnemonic := strings.Fields(ctx.String("mnemonic"))
	if !keyvault.IsMnemonicValid(mnemonic) {
		return keyvault.ErrInvalidMnemonic
	}

	walletSvc := getWalletService(ctx)
	walletUUID := uuid.NewString()
	password := ctx.String("password")

	if err := walletSvc.Create(context.Background(), &domain.WalletSetup{
		UserEmail:             ctx.String("email"),
		RecoveryMnemonicWords: mnemonic,
		WalletUUID:            walletUUID,
		WalletPasswordHash:    walletSvc.GenerateWalletPasswordHash(walletUUID, password),
	}); err != nil {
		return err
	}

	ledgerClient := wsledger.NewClient(ctx.String("endpoint"))
	if err := ledgerClient.Connect(context.Background()); err != nil {
		return err
	}
	defer ledgerClient.Disconnect()

	reconciler := application.NewReconciler(
		walletSvc, ledgerClient, notifier.NewLogNotifier(),
	)
	discoverySvc := application.NewDiscoveryService(
		walletSvc, ledgerClient, reconciler,
		float64(config.GetInt(config.ScanLimitKey)),
	)

	report, err := discoverySvc.Discover(
		context.Background(), application.DiscoverOpts{
			Mnemonic: mnemonic,
			Password: password,
			Email:    ctx.String("email"),
		},
	)
	if err != nil {
		return err
	}
	if err := walletSvc.Close(); err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"walletUUID":    walletUUID,
		"accountsFound": report.AccountsFound,
		"lastSequence":  report.LastSequence,
		"placeholder":   report.Placeholder,
	})
	return nil
}
