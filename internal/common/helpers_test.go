package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		chain string
		value int64
		want  string
	}{
		{"BTC", 0, "0.00000000"},
		{"BTC", 1, "0.00000001"},
		{"BTC", 150000000, "1.50000000"},
		{"btc", -2500, "-0.00002500"},
		{"SOL", 24981836, "0.024981836"},
	}
	for _, c := range cases {
		got, err := FormatUnits(c.chain, c.value)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}

	_, err := FormatUnits("ETH", 1)
	require.Error(t, err)
}

func TestParseUnits(t *testing.T) {
	cases := []struct {
		chain  string
		amount string
		want   int64
	}{
		{"BTC", "1", 100000000},
		{"BTC", "0.5", 50000000},
		{"BTC", ".00000001", 1},
		{"BTC", "0.100000000", 10000000},
		{"SOL", " 0.024981836 ", 24981836},
	}
	for _, c := range cases {
		got, err := ParseUnits(c.chain, c.amount)
		require.NoError(t, err, c.amount)
		require.Equal(t, c.want, got, c.amount)
	}

	for _, bad := range []string{"", "abc", "1.2.3", "0.000000001", "-1"} {
		_, err := ParseUnits("BTC", bad)
		require.Error(t, err, bad)
	}
}
