package keyvault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMnemonic = strings.Split(
	"legal winner thank year wave sausage worth useful legal winner thank yellow",
	" ",
)

func TestDeriveKeyPairIsDeterministic(t *testing.T) {
	first, err := DeriveKeyPair(DeriveKeyPairOpts{
		Mnemonic: testMnemonic,
		Sequence: 0,
	})
	require.NoError(t, err)
	second, err := DeriveKeyPair(DeriveKeyPairOpts{
		Mnemonic: testMnemonic,
		Sequence: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Address)
	assert.NotEmpty(t, first.Secret)
}

func TestDeriveKeyPairDistinctSequences(t *testing.T) {
	seen := map[string]struct{}{}
	for seq := 0; seq < 5; seq++ {
		pair, err := DeriveKeyPair(DeriveKeyPairOpts{
			Mnemonic: testMnemonic,
			Sequence: seq,
		})
		require.NoError(t, err)

		_, dup := seen[pair.Address]
		assert.False(t, dup)
		seen[pair.Address] = struct{}{}
	}
}

func TestDeriveKeyPairNormalizesMnemonic(t *testing.T) {
	messy := make([]string, len(testMnemonic))
	for i, w := range testMnemonic {
		messy[i] = " " + strings.ToUpper(w) + " "
	}

	clean, err := DeriveKeyPair(DeriveKeyPairOpts{Mnemonic: testMnemonic})
	require.NoError(t, err)
	normalized, err := DeriveKeyPair(DeriveKeyPairOpts{Mnemonic: messy})
	require.NoError(t, err)

	assert.Equal(t, clean.Address, normalized.Address)
}

func TestDeriveKeyPairOptsValidation(t *testing.T) {
	_, err := DeriveKeyPair(DeriveKeyPairOpts{Sequence: 0})
	assert.Equal(t, ErrNullMnemonic, err)

	_, err = DeriveKeyPair(DeriveKeyPairOpts{
		Mnemonic: []string{"not", "a", "phrase"},
	})
	assert.Equal(t, ErrInvalidMnemonic, err)

	_, err = DeriveKeyPair(DeriveKeyPairOpts{
		Mnemonic: testMnemonic,
		Sequence: -1,
	})
	assert.Equal(t, ErrNegativeSequence, err)
}

func TestKeyPairFromSecretRoundTrip(t *testing.T) {
	pair, err := DeriveKeyPair(DeriveKeyPairOpts{
		Mnemonic: testMnemonic,
		Sequence: 3,
	})
	require.NoError(t, err)

	rebuilt, err := KeyPairFromSecret(pair.Secret)
	require.NoError(t, err)

	assert.Equal(t, pair, rebuilt)
}

func TestKeyPairFromInvalidSecret(t *testing.T) {
	_, err := KeyPairFromSecret("definitelynotasecret")
	assert.Equal(t, ErrInvalidSecret, err)
}

func TestPasswordKey(t *testing.T) {
	first, err := PasswordKey(testMnemonic)
	require.NoError(t, err)
	second, err := PasswordKey(testMnemonic)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 40, len(first))

	other, err := NewMnemonic(NewMnemonicOpts{})
	require.NoError(t, err)
	otherKey, err := PasswordKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, first, otherKey)
}
