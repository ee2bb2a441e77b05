// services/output/internal/store/store.go
package store

import "lightcode-go/errcode"

// Store persists named configuration documents. Load enforces a size limit
// so a corrupt oversized file cannot exhaust memory on small targets.
type Store interface {
	Load(name string, limit int) ([]byte, error)
	Save(name string, data []byte) error
}

// MemStore is an in-memory store for tests and RAM-only targets.
type MemStore struct {
	docs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{docs: map[string][]byte{}}
}

func (s *MemStore) Load(name string, limit int) ([]byte, error) {
	data, ok := s.docs[name]
	if !ok {
		return nil, &errcode.E{C: errcode.StoreIO, Op: "store.load", Msg: "no document: " + name}
	}
	if limit > 0 && len(data) > limit {
		return nil, &errcode.E{C: errcode.StoreTooLarge, Op: "store.load", Msg: name}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Save(name string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.docs[name] = cp
	return nil
}
