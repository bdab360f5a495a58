package keyvault

import (
	"strings"

	"github.com/vulpemventures/go-bip39"
)

// NewMnemonicOpts is the struct given to NewMnemonic.
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a fresh recovery phrase as a list of words. The default
// entropy size of 128 bits yields the 12 words the desktop wallet ships with.
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

// IsMnemonicValid reports whether the words form a well-formed phrase from
// the wordlist.
func IsMnemonicValid(mnemonic []string) bool {
	return bip39.IsMnemonicValid(normalizeMnemonic(mnemonic))
}

func normalizeMnemonic(mnemonic []string) string {
	words := make([]string, 0, len(mnemonic))
	for _, w := range mnemonic {
		words = append(words, strings.ToLower(strings.TrimSpace(w)))
	}
	return strings.Join(words, " ")
}

func seedFromMnemonic(mnemonic []string) []byte {
	return bip39.NewSeed(normalizeMnemonic(mnemonic), "")
}
