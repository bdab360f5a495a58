package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var restore = cli.Command{
	Name:  "restore",
	Usage: "restore a wallet from a backup file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "in",
			Usage:    "path of the backup file to read",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "wallet",
			Usage: "target wallet identifier, a new one is generated when omitted",
		},
	},
	Action: restoreAction,
}

func restoreAction(ctx *cli.Context) error {
	blob, err := ioutil.ReadFile(ctx.String("in"))
	if err != nil {
		return err
	}

	walletUUID := ctx.String("wallet")
	if walletUUID == "" {
		walletUUID = uuid.NewString()
	}

	walletSvc := getWalletService(ctx)
	if err := walletSvc.RestoreWallet(
		context.Background(), blob, walletUUID, ctx.String("datadir"),
	); err != nil {
		return err
	}

	fmt.Println(walletUUID)
	return nil
}
