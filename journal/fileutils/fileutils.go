package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Truncate trims s and cuts it to at most max bytes on a rune boundary.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// ReadJSONStrict decodes a single JSON document from path, rejecting unknown fields.
func ReadJSONStrict(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if dec.More() {
		return fmt.Errorf("decode %s: trailing data", filepath.Base(path))
	}
	return nil
}

// WriteJSONFileAtomic marshals v (indented when pretty) and writes it with WriteFileAtomicSameDir.
func WriteJSONFileAtomic(path string, v any, pretty bool) error {
	marshal := json.Marshal
	if pretty {
		marshal = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
	}
	b, err := marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := WriteFileAtomicSameDir(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReplaceOutcome writes v to path and then removes stale, the other outcome
// file of the same request, so a request never has both a result and an error
// record on disk. A missing stale file is fine.
func ReplaceOutcome(path, stale string, v any, pretty bool) error {
	if err := WriteJSONFileAtomic(path, v, pretty); err != nil {
		return err
	}
	if stale == "" {
		return nil
	}
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", filepath.Base(stale), err)
	}
	return nil
}

// WriteFileAtomicSameDir writes data through a temp file next to path, then
// renames it into place. The temp file never outlives the call.
func WriteFileAtomicSameDir(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	err = tmp.Chmod(mode)
	if err == nil {
		_, err = tmp.Write(data)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
