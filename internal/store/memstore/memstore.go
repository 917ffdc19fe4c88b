// Package memstore is an in-memory DataStore, used by tests and by
// embedders who don't need persistence across process restarts.
package memstore

import (
	"sync"

	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/store"
)

type list struct {
	blocks []block
}

type block struct {
	body   []byte
	fidmax uint32
}

// Store is a DataStore entirely backed by in-process maps, guarded by
// a mutex so it is safe for one session at a time (per spec.md §5,
// concurrent sessions must each own independent state; Store permits
// but does not optimize for concurrent use).
type Store struct {
	mu           sync.Mutex
	lists        map[uint32]*list
	fingerprints map[uint32][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		lists:        make(map[uint32]*list),
		fingerprints: make(map[uint32][]byte),
	}
}

func (s *Store) GetPlistBlock(term uint32, blockID int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[term]
	if !ok || blockID < 1 || blockID > len(l.blocks) {
		return nil, false
	}
	b := l.blocks[blockID-1]
	out := make([]byte, len(b.body))
	copy(out, b.body)
	return out, true
}

func (s *Store) GetFingerprintSize(fid uint32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.fingerprints[fid]
	if !ok {
		return 0, acierrors.InvalidFingerprint("memstore.GetFingerprintSize", "no fingerprint stored for FID")
	}
	return len(data), nil
}

func (s *Store) GetFingerprint(fid uint32, nbytes, byteOffset int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.fingerprints[fid]
	if !ok {
		return nil, acierrors.InvalidFingerprint("memstore.GetFingerprint", "no fingerprint stored for FID")
	}
	if byteOffset < 0 || byteOffset+nbytes > len(data) {
		return nil, acierrors.InvalidFingerprint("memstore.GetFingerprint", "requested range exceeds stored fingerprint")
	}
	out := make([]byte, nbytes)
	copy(out, data[byteOffset:byteOffset+nbytes])
	return out, nil
}

func (s *Store) OnIndexerStart() error { return nil }
func (s *Store) OnIndexerEnd() error   { return nil }

func (s *Store) OnIndexerFlushStart() error { return nil }
func (s *Store) OnIndexerFlushEnd() error   { return nil }

func (s *Store) OnIndexerListHeader(term uint32) (store.ListHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[term]
	if !ok {
		return store.ListHeader{}, nil
	}
	return store.ListHeader{BlockCount: len(l.blocks)}, nil
}

func (s *Store) OnIndexerBlockHeader(term uint32, blockID int) (store.BlockHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[term]
	if !ok || blockID < 1 || blockID > len(l.blocks) {
		return store.BlockHeader{}, nil
	}
	b := l.blocks[blockID-1]
	return store.BlockHeader{ID: blockID, BodySize: len(b.body), FIDmax: b.fidmax}, nil
}

func (s *Store) OnIndexerChunk(term uint32, _ store.ListHeader, hdr store.BlockHeader, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(term)
	if len(l.blocks) == 0 {
		l.blocks = append(l.blocks, block{})
	}
	idx := len(l.blocks) - 1
	l.blocks[idx].body = append(l.blocks[idx].body, body...)
	l.blocks[idx].fidmax = hdr.FIDmax
	return nil
}

func (s *Store) OnIndexerNewBlock(term uint32, _ store.ListHeader, hdr store.BlockHeader, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listFor(term)
	data := make([]byte, len(body))
	copy(data, body)
	l.blocks = append(l.blocks, block{body: data, fidmax: hdr.FIDmax})
	return nil
}

func (s *Store) OnIndexerFingerprint(fid uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.fingerprints[fid] = cp
	return nil
}

func (s *Store) Flush() error { return nil }

func (s *Store) listFor(term uint32) *list {
	l, ok := s.lists[term]
	if !ok {
		l = &list{}
		s.lists[term] = l
	}
	return l
}
