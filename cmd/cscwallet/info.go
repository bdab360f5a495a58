package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:  "info",
	Usage: "list known wallets, or the accounts of one wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "wallet",
			Usage: "wallet identifier to inspect",
		},
	},
	Action: infoAction,
}

func infoAction(ctx *cli.Context) error {
	if walletUUID := ctx.String("wallet"); walletUUID != "" {
		return walletInfo(ctx, walletUUID)
	}

	defs, err := getWalletIndex(ctx).List()
	if err != nil {
		return err
	}
	printJSON(defs)
	return nil
}

func walletInfo(ctx *cli.Context, walletUUID string) error {
	walletSvc := getWalletService(ctx)
	if err := walletSvc.Open(context.Background(), walletUUID); err != nil {
		return err
	}
	defer walletSvc.Close()

	repoManager, err := walletSvc.RepoManager()
	if err != nil {
		return err
	}
	accounts, err := repoManager.AccountRepository().GetAll(context.Background())
	if err != nil {
		return err
	}
	txCount, err := repoManager.TransactionRepository().Count(context.Background())
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"walletUUID":   walletUUID,
		"accounts":     accounts,
		"transactions": txCount,
	})
	return nil
}
