// Package memory is the default bpstore.Store backend: an in-process
// map+queue keyed by a monotonic SID. Used by every pkg/channel unit test
// and suitable for a channel that does not need to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/dtn-stack/bplib/pkg/bpstore"
)

// Store is an in-memory, monotonic-SID storage handle.
type Store struct {
	mu     sync.Mutex
	data   map[bpstore.SID][]byte
	queue  []bpstore.SID
	nextID bpstore.SID
	closed bool
}

// New returns an empty Store. parm is accepted for interface symmetry with
// the other backends' create(parm) constructors and is unused here.
func New(parm string) *Store {
	return &Store{data: make(map[bpstore.SID][]byte)}
}

// Enqueue implements bpstore.Store.
func (s *Store) Enqueue(ctx context.Context, data []byte) (bpstore.SID, error) {
	if err := ctx.Err(); err != nil {
		return bpstore.SID(0), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return bpstore.SID(0), bpstore.ErrClosed
	}

	sid := s.nextID
	s.nextID++

	copied := make([]byte, len(data))
	copy(copied, data)
	s.data[sid] = copied
	s.queue = append(s.queue, sid)
	return sid, nil
}

// Dequeue implements bpstore.Store.
func (s *Store) Dequeue(ctx context.Context) ([]byte, bpstore.SID, error) {
	if err := ctx.Err(); err != nil {
		return nil, bpstore.SID(0), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, bpstore.SID(0), bpstore.ErrClosed
	}
	if len(s.queue) == 0 {
		return nil, bpstore.SID(0), bpstore.ErrEmpty
	}

	sid := s.queue[0]
	s.queue = s.queue[1:]

	data, ok := s.data[sid]
	if !ok {
		return nil, bpstore.SID(0), bpstore.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, sid, nil
}

// Retrieve implements bpstore.Store.
func (s *Store) Retrieve(sid bpstore.SID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, bpstore.ErrClosed
	}

	data, ok := s.data[sid]
	if !ok {
		return nil, bpstore.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Relinquish implements bpstore.Store.
func (s *Store) Relinquish(sid bpstore.SID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sid)
	return nil
}

// GetCount implements bpstore.Store.
func (s *Store) GetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close implements bpstore.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	s.queue = nil
	return nil
}

var _ bpstore.Store = (*Store)(nil)
