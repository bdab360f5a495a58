package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/urfave/cli/v2"
)

var backup = cli.Command{
	Name:  "backup",
	Usage: "export a wallet to a compressed backup file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "wallet",
			Usage:    "wallet identifier to export",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "out",
			Usage:    "path of the backup file to write",
			Required: true,
		},
	},
	Action: backupAction,
}

func backupAction(ctx *cli.Context) error {
	walletSvc := getWalletService(ctx)
	if err := walletSvc.Open(context.Background(), ctx.String("wallet")); err != nil {
		return err
	}
	defer walletSvc.Close()

	blob, err := walletSvc.ExportWallet(context.Background())
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := ioutil.WriteFile(out, blob, 0600); err != nil {
		return err
	}

	fmt.Printf("wrote %d bytes to %s\n", len(blob), out)
	return nil
}
