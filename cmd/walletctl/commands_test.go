package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

func TestParseRecipients(t *testing.T) {
	got, err := parseRecipients("BTC", []string{"addr1=0.5", "addr2=1"})
	require.NoError(t, err)
	require.Equal(t, []model.Recipient{
		{Address: "addr1", Amount: 50000000},
		{Address: "addr2", Amount: 100000000},
	}, got)

	got, err = parseRecipients("SOL", []string{"dest=0.000000001"})
	require.NoError(t, err)
	require.Equal(t, int64(1), got[0].Amount)

	for _, bad := range [][]string{nil, {"noamount"}, {"=1"}, {"a=x"}} {
		_, err := parseRecipients("BTC", bad)
		require.Error(t, err, bad)
	}
}
