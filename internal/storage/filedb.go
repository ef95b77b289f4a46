// Package storage provides the durable Ledger Store backends. Both
// backends expose the same full-snapshot contract: Load returns the
// most recently committed ledger, Save atomically replaces it.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"breadbot/internal/domain"
)

// FileDB persists the ledger as one pretty-printed JSON file. Writes go
// through a temp file plus rename so a reader never observes a
// half-written ledger.
type FileDB struct {
	mu   sync.Mutex
	path string
}

func NewFileDB(path string) (*FileDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	return &FileDB{path: path}, nil
}

// Load reads the ledger file. A missing or corrupt file yields an empty
// ledger, never a fatal error.
func (db *FileDB) Load(ctx context.Context) (domain.Ledger, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return domain.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(data) == 0 {
		return domain.Ledger{}, nil
	}
	var l domain.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		log.Printf("storage: ledger file %s is corrupt, starting empty: %v", db.path, err)
		return domain.Ledger{}, nil
	}
	if l == nil {
		l = domain.Ledger{}
	}
	return l, nil
}

// Save commits the ledger atomically (write temp file, fsync, rename).
func (db *FileDB) Save(ctx context.Context, l domain.Ledger) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp := db.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp, db.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}
