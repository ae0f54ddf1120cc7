package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "wallets", "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(name string) *model.WalletRecord {
	return &model.WalletRecord{
		WalletIdentity: model.WalletIdentity{
			Name:           name,
			Chain:          "BTC",
			Network:        "mainnet",
			DerivationPath: "m/44'/0'/0'",
		},
		EncryptionKey: "scrypt$16$8$1$a$b$c",
		MasterKey:     "deadbeef",
		PasswordHash:  "$2a$04$hash",
		XPubKey:       "xpub123",
		PubKey:        "02ab",
		CreatedAt:     time.Unix(1700000000, 0).UTC(),
	}
}

func TestSaveLoadWallet(t *testing.T) {
	s := newTestStore(t)

	rec := testRecord("W")
	require.NoError(t, s.SaveWallet(rec))

	loaded, err := s.LoadWallet("W")
	require.NoError(t, err)
	require.Equal(t, rec, loaded)

	err = s.SaveWallet(testRecord("W"))
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.LoadWallet("missing")
	require.ErrorIs(t, err, ErrNotFound)

	names, err := s.ListWallets()
	require.NoError(t, err)
	require.Equal(t, []string{"W"}, names)
}

func TestUpdateWallet(t *testing.T) {
	s := newTestStore(t)

	rec := testRecord("W")
	require.ErrorIs(t, s.UpdateWallet(rec), ErrNotFound)

	require.NoError(t, s.SaveWallet(rec))
	rec.BaseURL = "http://localhost:3000/api"
	require.NoError(t, s.UpdateWallet(rec))

	loaded, err := s.LoadWallet("W")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000/api", loaded.BaseURL)
}

func TestKeys(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetKey("W", "addr1")
	require.ErrorIs(t, err, ErrKeyNotFound)

	keys := []model.KeyRecord{
		{Address: "addr2", PubKey: "02bb", PrivKey: "sealed", Encrypted: true},
		{Address: "addr1", PubKey: "02aa", PrivKey: "plain"},
	}
	require.NoError(t, s.AddKeys("W", keys))

	got, err := s.GetKey("W", "addr1")
	require.NoError(t, err)
	require.Equal(t, keys[1], *got)

	_, err = s.GetKey("W", "addr3")
	require.ErrorIs(t, err, ErrKeyNotFound)

	// Keys are scoped per wallet.
	_, err = s.GetKey("other", "addr1")
	require.ErrorIs(t, err, ErrKeyNotFound)

	addrs, err := s.ListAddresses("W")
	require.NoError(t, err)
	require.Equal(t, []string{"addr1", "addr2"}, addrs)

	require.Error(t, s.AddKeys("W", []model.KeyRecord{{PubKey: "02cc"}}))
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveWallet(testRecord("W")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LoadWallet("W")
	require.NoError(t, err)
	require.Equal(t, path, s.Path())
}
