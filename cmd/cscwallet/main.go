package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/casinocoin/cscwalletd/config"
	"github.com/casinocoin/cscwalletd/internal/core/application"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/notifier"
	dbbadger "github.com/casinocoin/cscwalletd/internal/infrastructure/storage/db/badger"
	"github.com/casinocoin/cscwalletd/internal/infrastructure/walletindex"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "cscwallet operator CLI"
	app.Usage = "Command line interface for cscwalletd operators"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "directory holding the wallet index and stores",
			Value: config.GetDatadir(),
		},
	}
	app.Commands = append(
		app.Commands,
		&genseed,
		&create,
		&recoverwallet,
		&info,
		&backup,
		&restore,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getWalletService(ctx *cli.Context) application.WalletService {
	datadir := ctx.String("datadir")
	return application.NewWalletService(
		datadir,
		dbbadger.NewStoreOpener(0),
		walletindex.New(datadir),
		notifier.NewLogNotifier(),
	)
}

func getWalletIndex(ctx *cli.Context) *walletindex.Index {
	return walletindex.New(ctx.String("datadir"))
}

func printJSON(v interface{}) {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(buf))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[cscwallet] %v\n", err)
	os.Exit(1)
}
