package addresscodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/crypto"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testcases := []struct {
		name      string
		accountID [20]byte
	}{
		{name: "zero account"},
		{
			name: "derived account",
			accountID: crypto.CalcAccountID([]byte{
				0xED, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
			}),
		},
		{
			name:      "all ones",
			accountID: [20]byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			address := Encode(tc.accountID)
			require.True(t, IsValid(address))

			decoded, err := Decode(address)
			require.NoError(t, err)
			require.Equal(t, tc.accountID, decoded)
		})
	}
}

func TestDecodeRejectsCorruptedAddress(t *testing.T) {
	address := Encode([20]byte{0xAA, 0xBB, 0xCC})

	// Flip one character without leaving the base58 alphabet.
	corrupted := []byte(address)
	if corrupted[3] == '2' {
		corrupted[3] = '3'
	} else {
		corrupted[3] = '2'
	}

	_, err := Decode(string(corrupted))
	require.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "0OIl", "notanaddress", "2g"} {
		_, err := Decode(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestDistinctAccountsDistinctAddresses(t *testing.T) {
	a := Encode([20]byte{1})
	b := Encode([20]byte{2})
	require.NotEqual(t, a, b)
}
