package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/evitrend/internal/model"
)

// BackupSuffix is appended to the previous corpus file on save
const BackupSuffix = ".bak"

// Load reads a JSON array of statements
func Load(path string) ([]model.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var statements []model.Statement
	if err := json.Unmarshal(data, &statements); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	return statements, nil
}

// rename is swapped in tests to simulate a failing final write
var rename = os.Rename

// SaveOption customizes Save
type SaveOption func(*saveOptions)

type saveOptions struct {
	backup bool
}

// WithoutBackup leaves an existing backup untouched. Batches back up once
// with Backup and then save every triple with this option.
func WithoutBackup() SaveOption {
	return func(o *saveOptions) { o.backup = false }
}

// Save writes statements to path. Unless WithoutBackup is given, the current
// file is first copied to path+".bak", replacing any older backup. Both files
// are written through a temp file and rename, so a failed save leaves the
// previous corpus in place.
func Save(path string, statements []model.Statement, opts ...SaveOption) error {
	o := saveOptions{backup: true}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := encodeJSON(statements)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	if o.backup {
		if err := Backup(path); err != nil {
			return err
		}
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}

// Backup copies the file at path to path+".bak". A missing file is not an
// error: there is nothing to back up yet.
func Backup(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read corpus for backup: %w", err)
	}
	if err := writeAtomic(path+BackupSuffix, data); err != nil {
		return fmt.Errorf("backup corpus: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Apply writes labeled statements back into all at the given positions
func Apply(all []model.Statement, positions []int, labeled []model.Statement) error {
	if len(positions) != len(labeled) {
		return fmt.Errorf("apply labels: %d positions for %d statements", len(positions), len(labeled))
	}
	for _, pos := range positions {
		if pos < 0 || pos >= len(all) {
			return fmt.Errorf("apply labels: position %d out of range (corpus has %d statements)", pos, len(all))
		}
	}
	for i, pos := range positions {
		all[pos] = labeled[i]
	}
	return nil
}

// encodeJSON indents with two spaces and leaves <, > and & alone so
// evidence sentences stay readable.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
