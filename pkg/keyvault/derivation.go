package keyvault

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// coinType is the registered coin type for the CSC ledger, used as the
	// second hardened element of the derivation path m/44'/423'/0'/0/seq.
	coinType = 423

	addressVersion = 0x1c
	secretVersion  = 0x21
)

// KeyPair is the in-memory, plaintext result of a derivation. The Secret
// field alone is enough to rebuild the whole pair.
type KeyPair struct {
	Address    string
	PublicKey  string
	PrivateKey string
	Secret     string
}

// DeriveKeyPairOpts is the struct given to DeriveKeyPair.
type DeriveKeyPairOpts struct {
	Mnemonic []string
	Sequence int
}

func (o DeriveKeyPairOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !IsMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	if o.Sequence < 0 {
		return ErrNegativeSequence
	}
	return nil
}

// DeriveKeyPair deterministically derives the keypair for the given account
// sequence of the recovery phrase. Equal inputs always produce the same pair,
// distinct sequences produce distinct pairs.
func DeriveKeyPair(opts DeriveKeyPairOpts) (*KeyPair, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	hdNode, err := hdkeychain.NewMaster(
		seedFromMnemonic(opts.Mnemonic), &chaincfg.MainNetParams,
	)
	if err != nil {
		return nil, err
	}
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + coinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		uint32(opts.Sequence),
	}
	for _, step := range path {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, err
		}
	}

	prvkey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return keyPairFromPrivateKey(prvkey), nil
}

// KeyPairFromSecret rebuilds the full keypair from an encoded secret. It is
// used to verify a decrypted secret against the stored public key and to
// import externally generated keys.
func KeyPairFromSecret(secret string) (*KeyPair, error) {
	raw, version, err := base58.CheckDecode(secret)
	if err != nil || version != secretVersion || len(raw) != 32 {
		return nil, ErrInvalidSecret
	}
	prvkey, _ := btcec.PrivKeyFromBytes(raw)
	return keyPairFromPrivateKey(prvkey), nil
}

func keyPairFromPrivateKey(prvkey *btcec.PrivateKey) *KeyPair {
	pubkey := prvkey.PubKey().SerializeCompressed()
	return &KeyPair{
		Address:    base58.CheckEncode(btcutil.Hash160(pubkey), addressVersion),
		PublicKey:  hex.EncodeToString(pubkey),
		PrivateKey: hex.EncodeToString(prvkey.Serialize()),
		Secret:     base58.CheckEncode(prvkey.Serialize(), secretVersion),
	}
}

// PasswordKey returns a password-independent fingerprint of the recovery
// phrase. It lets the wallet verify a phrase without storing the phrase
// itself.
func PasswordKey(mnemonic []string) (string, error) {
	if len(mnemonic) <= 0 {
		return "", ErrNullMnemonic
	}
	if !IsMnemonicValid(mnemonic) {
		return "", ErrInvalidMnemonic
	}
	return hex.EncodeToString(btcutil.Hash160(seedFromMnemonic(mnemonic))), nil
}
