package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"lightcode-go/errcode"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()

	if _, err := s.Load("cfg", 0); errcode.Of(err) != errcode.StoreIO {
		t.Fatalf("missing doc: code = %v, want store_io", errcode.Of(err))
	}

	doc := []byte(`{"a":1}`)
	if err := s.Save("cfg", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("cfg", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Fatalf("Load = %s, want %s", got, doc)
	}

	// The store must not alias caller memory.
	got[0] = 'X'
	again, _ := s.Load("cfg", 0)
	if !bytes.Equal(again, doc) {
		t.Fatalf("store aliased returned buffer")
	}
}

func TestMemStoreSizeLimit(t *testing.T) {
	s := NewMemStore()
	if err := s.Save("big", make([]byte, 100)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("big", 99); errcode.Of(err) != errcode.StoreTooLarge {
		t.Fatalf("oversize: code = %v, want store_too_large", errcode.Of(err))
	}
	if _, err := s.Load("big", 100); err != nil {
		t.Fatalf("exact limit rejected: %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "nested")) // Save must create it

	doc := []byte(`{"output_config":{"channels":{}}}`)
	if err := s.Save("output_config", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("output_config", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Fatalf("Load = %s, want %s", got, doc)
	}

	// No temp file left behind.
	ents, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(ents) != 1 || ents[0].Name() != "output_config.json" {
		t.Fatalf("unexpected directory contents: %v", ents)
	}
}

func TestFileStoreMissingAndOversize(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if _, err := s.Load("absent", 0); errcode.Of(err) != errcode.StoreIO {
		t.Fatalf("missing file: code = %v, want store_io", errcode.Of(err))
	}

	if err := s.Save("big", make([]byte, 1024)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("big", 512); errcode.Of(err) != errcode.StoreTooLarge {
		t.Fatalf("oversize: code = %v, want store_too_large", errcode.Of(err))
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if err := s.Save("doc", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save("doc", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := s.Load("doc", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("Load = %s, want {\"v\":2}", got)
	}
}
