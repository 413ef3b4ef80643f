package market

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoyaltySplit(t *testing.T) {
	testcases := []struct {
		name     string
		price    uint64
		royalty  uint64
		proceeds uint64
	}{
		{name: "one SOL", price: 1_000_000_000, royalty: 30_000_000, proceeds: 970_000_000},
		{name: "rounds down", price: 33, royalty: 0, proceeds: 33},
		{name: "one lamport", price: 1, royalty: 0, proceeds: 1},
		{name: "hundred lamports", price: 100, royalty: 3, proceeds: 97},
		{name: "odd price", price: 1_234_567_891, royalty: 37_037_036, proceeds: 1_197_530_855},
		{name: "huge price no overflow", price: 1 << 62, royalty: (1 << 62) / 10000 * 300 + (1<<62)%10000*300/10000, proceeds: 1<<62 - ((1<<62)/10000*300 + (1<<62)%10000*300/10000)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			royalty, proceeds := RoyaltySplit(tc.price)
			require.Equal(t, tc.royalty, royalty)
			require.Equal(t, tc.proceeds, proceeds)
			require.Equal(t, tc.price, royalty+proceeds, "split must sum to price")
		})
	}
}

func TestDeriveCardIDDeterministic(t *testing.T) {
	account := [20]byte{1, 2, 3}

	require.Equal(t, DeriveCardID(account, 7), DeriveCardID(account, 7))
	require.NotEqual(t, DeriveCardID(account, 7), DeriveCardID(account, 8))
	require.NotEqual(t, DeriveCardID(account, 7), DeriveCardID([20]byte{4}, 7))
}

func TestCardIDRoundTrip(t *testing.T) {
	id := DeriveCardID([20]byte{9}, 1)

	parsed, err := ParseCardID(FormatCardID(id))
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseCardID("nothex")
	require.Error(t, err)
	_, err = ParseCardID("AB")
	require.Error(t, err)
}
