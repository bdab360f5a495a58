package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

var genseed = cli.Command{
	Name:  "genseed",
	Usage: "generate a new recovery mnemonic",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "entropy",
			Usage: "entropy size in bits, a multiple of 32 between 128 and 256",
			Value: 128,
		},
	},
	Action: genSeedAction,
}

func genSeedAction(ctx *cli.Context) error {
	mnemonic, err := keyvault.NewMnemonic(keyvault.NewMnemonicOpts{
		EntropySize: ctx.Int("entropy"),
	})
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(mnemonic, " "))
	return nil
}
