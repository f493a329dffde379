// Package storage provisions the on-disk layout backing schema objects. A
// storage engine keeps one directory per table and per index; the schema
// updater's commit hooks drive creation and removal. The layout also
// persists each object's definition so an engine restarting without the
// version log can rediscover what it stores.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vellumdb/vellum/internal/schema"
)

const definitionFile = "definition.json"

// Layout manages the data directory tree for one database.
type Layout struct {
	baseDir string
	mu      sync.Mutex
}

// NewLayout creates (or reopens) a layout rooted at baseDir.
func NewLayout(baseDir string) (*Layout, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, "tables"), filepath.Join(baseDir, "indexes")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("storage: create layout directory: %w", err)
		}
	}
	return &Layout{baseDir: baseDir}, nil
}

// TableDir returns the directory holding a table's data.
func (l *Layout) TableDir(name string) string {
	return filepath.Join(l.baseDir, "tables", name)
}

// IndexDir returns the directory holding an index's data.
func (l *Layout) IndexDir(name string) string {
	return filepath.Join(l.baseDir, "indexes", name)
}

// CreateTable provisions a table's directory and writes its definition.
func (l *Layout) CreateTable(t *schema.Table) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeDefinition(l.TableDir(t.Name), t)
}

// UpdateTable rewrites a table's stored definition after an alteration.
func (l *Layout) UpdateTable(t *schema.Table) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeDefinition(l.TableDir(t.Name), t)
}

// DropTable removes a table's directory and everything under it.
func (l *Layout) DropTable(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.RemoveAll(l.TableDir(name)); err != nil {
		return fmt.Errorf("storage: drop table %s: %w", name, err)
	}
	return nil
}

// CreateIndex provisions an index's directory and writes its definition.
func (l *Layout) CreateIndex(idx *schema.Index) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeDefinition(l.IndexDir(idx.Name), idx)
}

// DropIndex removes an index's directory.
func (l *Layout) DropIndex(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.RemoveAll(l.IndexDir(name)); err != nil {
		return fmt.Errorf("storage: drop index %s: %w", name, err)
	}
	return nil
}

// Tables lists the table names currently provisioned on disk.
func (l *Layout) Tables() ([]string, error) {
	return listDirs(filepath.Join(l.baseDir, "tables"))
}

// Indexes lists the index names currently provisioned on disk.
func (l *Layout) Indexes() ([]string, error) {
	return listDirs(filepath.Join(l.baseDir, "indexes"))
}

// ReadTableDefinition loads a provisioned table's stored definition.
func (l *Layout) ReadTableDefinition(name string) (*schema.Table, error) {
	var t schema.Table
	if err := readDefinition(l.TableDir(name), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func writeDefinition(dir string, def interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("storage: create object directory: %w", err)
	}
	raw, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode definition: %w", err)
	}
	// Write-then-rename keeps the definition readable across a crash.
	tmp := filepath.Join(dir, definitionFile+".tmp")
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("storage: write definition: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, definitionFile)); err != nil {
		return fmt.Errorf("storage: publish definition: %w", err)
	}
	return nil
}

func readDefinition(dir string, into interface{}) error {
	raw, err := os.ReadFile(filepath.Join(dir, definitionFile))
	if err != nil {
		return fmt.Errorf("storage: read definition: %w", err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("storage: decode definition: %w", err)
	}
	return nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
