package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	nod := make([]byte, 168+256*4-1)
	nod[6] = 4
	files := map[string][]byte{
		"palette.NOD":      nod,
		"sub/broken.anm":   []byte("not an animation"),
		"sub/notes.txt":    []byte("skipped"),
		"sub/deep/bad.spk": []byte("short"),
	}
	for name, b := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewScanner(2)
	closers, err := s.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	results := s.Wait()
	if len(closers) != 0 {
		t.Errorf("expected no open archives, got %d", len(closers))
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}
	want := []struct {
		name   string
		format string
		failed bool
	}{
		{"palette.NOD", "nod", false},
		{"sub/broken.anm", "anm", true},
		{"sub/deep/bad.spk", "spk", true},
	}
	for i, w := range want {
		r := results[i]
		if r.Path != filepath.Join(dir, filepath.FromSlash(w.name)) || r.Format != w.format || (r.Error != "") != w.failed {
			t.Errorf("result %d: unexpected %+v", i, r)
		}
	}
}
