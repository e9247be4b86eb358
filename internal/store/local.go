package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

const DefaultRecordDir = ".llmeval/records"

// EnsureDir creates dir (or DefaultRecordDir when empty) and returns it.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultRecordDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create record dir %s: %w", dir, err)
	}
	return dir, nil
}

// Save writes raw to dir/name, creating dir when needed.
func Save(dir, name string, raw []byte) (string, error) {
	dir, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	log.Debugf("saved %d bytes to %s", len(raw), dst)
	return dst, nil
}

// List returns the record files under source in lexical order. A file path
// is returned as-is.
func List(source string) ([]string, error) {
	fi, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{source}, nil
	}
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("read record dir %s: %w", source, err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(source, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
