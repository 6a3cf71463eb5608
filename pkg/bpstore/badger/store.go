// Package badger is the durable bpstore.Store backend: a badger/v4 database
// keyed by an 8-byte big-endian SID, so outstanding custody bundles survive
// a bpd restart. This is the backend a long-running daemon opens its
// channels against.
//
// Key namespace:
//
//	"d:" + sid(8 bytes BE)   → retained bundle bytes
//	"q:" + sid(8 bytes BE)   → empty marker, present while sid is still
//	                           queued for Dequeue
//
// The sequence badger hands out for each Enqueue IS the SID, so "q:" keys
// sort in enqueue order and the queue head is always the lexicographically
// smallest "q:" key — no separate sequence counter needed.
package badger

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dtn-stack/bplib/pkg/bpstore"
)

const (
	prefixData  = "d:"
	prefixQueue = "q:"
)

func keyData(sid bpstore.SID) []byte {
	return appendSID([]byte(prefixData), sid)
}

func keyQueue(sid bpstore.SID) []byte {
	return appendSID([]byte(prefixQueue), sid)
}

func appendSID(prefix []byte, sid bpstore.SID) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(sid)
		sid >>= 8
	}
	return append(prefix, b...)
}

func sidFromQueueKey(key []byte) bpstore.SID {
	var sid bpstore.SID
	for _, b := range key[len(prefixQueue):] {
		sid = sid<<8 | bpstore.SID(b)
	}
	return sid
}

// Store is a badger-backed storage handle.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// New opens (creating if absent) a badger database at dir and returns a
// Store over it. dir is the storage_service_parm this backend expects.
func New(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("bpstore/badger: open %s: %w", dir, err)
	}
	seq, err := db.GetSequence([]byte("bpstore:sid"), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bpstore/badger: sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// Enqueue implements bpstore.Store.
func (s *Store) Enqueue(ctx context.Context, data []byte) (bpstore.SID, error) {
	if err := ctx.Err(); err != nil {
		return bpstore.SID(0), err
	}

	n, err := s.seq.Next()
	if err != nil {
		return bpstore.SID(0), fmt.Errorf("bpstore/badger: next sid: %w", err)
	}
	sid := bpstore.SID(n)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyData(sid), data); err != nil {
			return err
		}
		return txn.Set(keyQueue(sid), nil)
	})
	if err != nil {
		return bpstore.SID(0), fmt.Errorf("bpstore/badger: enqueue: %w", err)
	}
	return sid, nil
}

// Dequeue implements bpstore.Store.
func (s *Store) Dequeue(ctx context.Context) ([]byte, bpstore.SID, error) {
	if err := ctx.Err(); err != nil {
		return nil, bpstore.SID(0), err
	}

	var data []byte
	var sid bpstore.SID
	found := false

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixQueue)
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek([]byte(prefixQueue))
		if !it.ValidForPrefix([]byte(prefixQueue)) {
			return nil
		}
		item := it.Item()
		sid = sidFromQueueKey(item.KeyCopy(nil))
		found = true

		if err := txn.Delete(keyQueue(sid)); err != nil {
			return err
		}

		dataItem, err := txn.Get(keyData(sid))
		if err != nil {
			return err
		}
		return dataItem.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, bpstore.SID(0), fmt.Errorf("bpstore/badger: dequeue: %w", err)
	}
	if !found {
		return nil, bpstore.SID(0), bpstore.ErrEmpty
	}
	return data, sid, nil
}

// Retrieve implements bpstore.Store.
func (s *Store) Retrieve(sid bpstore.SID) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyData(sid))
		if err == badger.ErrKeyNotFound {
			return bpstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Relinquish implements bpstore.Store.
func (s *Store) Relinquish(sid bpstore.SID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyData(sid))
	})
	if err != nil {
		return fmt.Errorf("bpstore/badger: relinquish: %w", err)
	}
	return nil
}

// GetCount implements bpstore.Store.
func (s *Store) GetCount() int {
	n := 0
	s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixQueue)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefixQueue)); it.ValidForPrefix([]byte(prefixQueue)); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Close implements bpstore.Store.
func (s *Store) Close() error {
	s.seq.Release()
	return s.db.Close()
}

var _ bpstore.Store = (*Store)(nil)
