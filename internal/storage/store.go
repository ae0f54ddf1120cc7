package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/AlexZinkM/hd-wallet/internal/model"
)

var (
	// walletBucket maps wallet name to its JSON record.
	walletBucket = []byte("wallets")

	// keyBucket holds one nested bucket per wallet mapping address to its
	// JSON key record.
	keyBucket = []byte("keys")

	// ErrAlreadyExists is returned when saving a wallet whose name is taken.
	ErrAlreadyExists = errors.New("wallet already exists")

	// ErrNotFound is returned when a wallet record does not exist.
	ErrNotFound = errors.New("wallet not found")

	// ErrKeyNotFound is returned when no key is stored for an address.
	ErrKeyNotFound = errors.New("key not found")
)

const openTimeout = 5 * time.Second

// Store is a bbolt-backed key store. Writers are serialized by bbolt itself.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (creating when needed) the store file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{walletBucket, keyBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	log.Debugf("Opened key store at %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveWallet persists a new wallet record. It never overwrites.
func (s *Store) SaveWallet(rec *model.WalletRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		wallets := tx.Bucket(walletBucket)
		if wallets.Get([]byte(rec.Name)) != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, rec.Name)
		}
		return wallets.Put([]byte(rec.Name), data)
	})
}

// UpdateWallet overwrites an existing wallet record.
func (s *Store) UpdateWallet(rec *model.WalletRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		wallets := tx.Bucket(walletBucket)
		if wallets.Get([]byte(rec.Name)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, rec.Name)
		}
		return wallets.Put([]byte(rec.Name), data)
	})
}

// LoadWallet fetches a wallet record by name.
func (s *Store) LoadWallet(name string) (*model.WalletRecord, error) {
	var rec model.WalletRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(walletBucket).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListWallets returns the names of all stored wallets, sorted.
func (s *Store) ListWallets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(walletBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// AddKeys stores key records for a wallet, replacing records with the same
// address.
func (s *Store) AddKeys(wallet string, keys []model.KeyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket(keyBucket).CreateBucketIfNotExists([]byte(wallet))
		if err != nil {
			return err
		}

		for _, k := range keys {
			if k.Address == "" {
				return errors.New("key record has no address")
			}
			data, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("failed to marshal key: %w", err)
			}
			if err := bucket.Put([]byte(k.Address), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetKey fetches the key record stored for address.
func (s *Store) GetKey(wallet, address string) (*model.KeyRecord, error) {
	var rec model.KeyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keyBucket).Bucket([]byte(wallet))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, address)
		}
		data := bucket.Get([]byte(address))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, address)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAddresses returns every address with a stored key, sorted.
func (s *Store) ListAddresses(wallet string) ([]string, error) {
	var addrs []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keyBucket).Bucket([]byte(wallet))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			addrs = append(addrs, string(k))
			return nil
		})
	})
	sort.Strings(addrs)
	return addrs, err
}
