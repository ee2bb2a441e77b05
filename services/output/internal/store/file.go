// services/output/internal/store/file.go
package store

import (
	"os"
	"path/filepath"

	"lightcode-go/errcode"
)

// FileStore keeps one JSON file per document under Dir. Saves go through a
// temp file and rename so a crash mid-write never leaves a torn document.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

func (s *FileStore) Load(name string, limit int) ([]byte, error) {
	p := s.path(name)
	fi, err := os.Stat(p)
	if err != nil {
		return nil, &errcode.E{C: errcode.StoreIO, Op: "store.load", Msg: p, Err: err}
	}
	if limit > 0 && fi.Size() > int64(limit) {
		return nil, &errcode.E{C: errcode.StoreTooLarge, Op: "store.load", Msg: p}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &errcode.E{C: errcode.StoreIO, Op: "store.load", Msg: p, Err: err}
	}
	return data, nil
}

func (s *FileStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.save", Msg: s.Dir, Err: err}
	}
	p := s.path(name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.save", Msg: tmp, Err: err}
	}
	if err := os.Rename(tmp, p); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.save", Msg: p, Err: err}
	}
	return nil
}
