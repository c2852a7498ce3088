// Package ledger owns the load/save boundary: one JSON document per
// named ledger in a flat directory. All operations are synchronous and
// assume a single writer per ledger; callers aggregate over the loaded
// snapshot, never over the file.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moneysaver/internal/core"
)

// Store reads and writes ledgers under a base directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// validName rejects names that would resolve outside the store
// directory. A ledger name is a bare file name, never a path.
func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty ledger name")
	}
	if name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid ledger name %q", name)
	}
	return nil
}

// Load reads the named ledger. A missing file is ErrNotFound; malformed
// JSON, unequal item arrays or unparseable dates are ErrCorrupt.
func (s *Store) Load(name string) (*core.Ledger, error) {
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNotFound, err)
	}
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return nil, fmt.Errorf("read ledger %s: %w", name, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrCorrupt, name, err)
	}
	led, err := doc.toLedger()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if led.FileName == "" {
		led.FileName = name
	}
	return led, nil
}

// Save persists the ledger under its file name, reversing the working
// order back to insertion order and reindexing. The document is written
// to a temp file and atomically renamed over the destination so a
// failed write never leaves a partial ledger behind.
func (s *Store) Save(led *core.Ledger) error {
	if err := validName(led.FileName); err != nil {
		return err
	}
	doc := fromLedger(led)
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger %s: %w", led.FileName, err)
	}

	dst := s.path(led.FileName)
	tmp, err := os.CreateTemp(s.dir, led.FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger %s: %w", led.FileName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger %s: %w", led.FileName, err)
	}

	slog.Info("Ledger saved", "ledger", led.FileName, "records", len(led.Records))
	return nil
}

// Create writes an empty ledger with a fresh creation timestamp. An
// existing ledger with the same name is never overwritten.
func (s *Store) Create(author, fileName string) (*core.Ledger, error) {
	if err := validName(fileName); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path(fileName)); err == nil {
		return nil, fmt.Errorf("ledger %s already exists", fileName)
	}

	led := &core.Ledger{
		Author:    author,
		FileName:  fileName,
		CreatedAt: time.Now().Format(core.CreatedAtLayout),
	}
	// New files historically carry the author under name_of_author.
	doc := fromLedger(led)
	doc.NameOfAuthor = doc.Author
	doc.Author = ""
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal ledger %s: %w", fileName, err)
	}
	if err := os.WriteFile(s.path(fileName), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write ledger %s: %w", fileName, err)
	}

	slog.Info("Ledger created", "ledger", fileName, "author", author)
	return led, nil
}

// List returns the names of existing ledgers, sorted by the directory
// listing order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
