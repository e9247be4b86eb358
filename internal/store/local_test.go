package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSave(t *testing.T) {
	dstDir := filepath.Join(t.TempDir(), "records")
	content := []byte(`{"record_id":"r1"}`)

	dst, err := Save(dstDir, "record_r1.json", content)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(dst) != "record_r1.json" {
		t.Errorf("dest filename = %q, want record_r1.json", filepath.Base(dst))
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", string(got))
	}
}

func TestSave_StripsDirectoryFromName(t *testing.T) {
	dstDir := t.TempDir()
	dst, err := Save(dstDir, "../../escape.json", []byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(dst) != dstDir {
		t.Errorf("dst = %s, want inside %s", dst, dstDir)
	}
}

func TestSave_DestinationParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("blocker"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Save(filepath.Join(blocker, "sub"), "r.json", []byte("{}")); err == nil {
		t.Fatal("expected error when destination parent is a file")
	}
}

func TestEnsureDir_Default(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	dir, err := EnsureDir("")
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if dir != DefaultRecordDir {
		t.Errorf("dir = %q, want %q", dir, DefaultRecordDir)
	}
	if info, err := os.Stat(filepath.Join(tmp, DefaultRecordDir)); err != nil || !info.IsDir() {
		t.Errorf("expected %s to exist", DefaultRecordDir)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"record_b.json", "record_a.json", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "record_a.json" || filepath.Base(paths[1]) != "record_b.json" {
		t.Errorf("unexpected order: %v", paths)
	}
}

func TestList_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	paths, err := List(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Errorf("List(file) = %v", paths)
	}
}

func TestList_Missing(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
