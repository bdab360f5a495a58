package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/casinocoin/cscwalletd/internal/core/domain"
	"github.com/casinocoin/cscwalletd/pkg/keyvault"
)

var create = cli.Command{
	Name:  "create",
	Usage: "create a new wallet from a recovery mnemonic",
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
		&cli.BoolFlag{
			Name:  "testnet",
			Usage: "register the wallet against the test network",
		},
	},
	Action: createAction,
}

func createAction(ctx *cli.Context) error {
	mnemonic := strings.Fields(ctx.String("mnemonic"))
	if !keyvault.IsMnemonicValid(mnemonic) {
		return keyvault.ErrInvalidMnemonic
	}

	walletSvc := getWalletService(ctx)
	walletUUID := uuid.NewString()
	password := ctx.String("password")

	setup := &domain.WalletSetup{
		UserEmail:             ctx.String("email"),
		RecoveryMnemonicWords: mnemonic,
		TestNetwork:           ctx.Bool("testnet"),
		WalletUUID:            walletUUID,
		WalletPasswordHash:    walletSvc.GenerateWalletPasswordHash(walletUUID, password),
	}
	if err := walletSvc.Create(context.Background(), setup); err != nil {
		return err
	}

	pair, err := keyvault.DeriveKeyPair(keyvault.DeriveKeyPairOpts{
		Mnemonic: mnemonic,
		Sequence: 0,
	})
	if err != nil {
		return err
	}

	repoManager, err := walletSvc.RepoManager()
	if err != nil {
		return err
	}
	if err := repoManager.KeyRepository().Add(
		context.Background(), &domain.Key{
			Address:    pair.Address,
			PublicKey:  pair.PublicKey,
			PrivateKey: pair.PrivateKey,
			Secret:     pair.Secret,
			Encrypted:  false,
		},
	); err != nil {
		return err
	}
	if err := repoManager.AccountRepository().Add(
		context.Background(),
		domain.NewAccount(domain.BaseCurrency, pair.Address, "Account 1", 0),
	); err != nil {
		return err
	}
	if err := walletSvc.EncryptAllKeys(
		context.Background(), password, ctx.String("email"),
	); err != nil {
		return err
	}
	if err := walletSvc.Close(); err != nil {
		return err
	}

	fmt.Println(walletUUID)
	return nil
}
