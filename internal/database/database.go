// Package database assembles one Vellum database instance: a dialect, a
// schema updater, and an optional on-disk version history. It is the entry
// point the CLI and embedding callers use.
package database

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/vellumdb/vellum/internal/config"
	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/history"
	"github.com/vellumdb/vellum/internal/schema"
	"github.com/vellumdb/vellum/internal/storage"
	"github.com/vellumdb/vellum/internal/updater"
)

// Database is one running database instance.
type Database struct {
	// ID is a unique identifier for this instance, surfaced in the
	// DATABASE_OPTIONS catalog.
	ID string

	cfg     *config.Config
	updater *updater.Updater
	log     *history.Log
	layout  *storage.Layout
}

// Open creates a database from a validated configuration. If history is
// enabled and the version log already holds versions, the latest one
// becomes the initial schema; otherwise the database starts empty.
func Open(ctx context.Context, cfg *config.Config) (*Database, error) {
	d, err := cfg.ParseDialect()
	if err != nil {
		return nil, err
	}

	db := &Database{ID: uuid.NewString(), cfg: cfg}

	layout, err := storage.NewLayout(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	db.layout = layout

	initial := schema.New(cfg.CatalogName, d)
	if cfg.History.Enabled {
		hl, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		db.log = hl

		rec, err := hl.Latest(ctx)
		switch {
		case err == nil:
			initial = rec.Schema
			log.Printf("database: restored schema version %d from %s", rec.Version, cfg.History.Path)
		case errors.GetCode(err) == errors.CodeVersionNotFound:
			// Fresh log; start empty.
		default:
			hl.Close()
			return nil, err
		}
	}

	db.updater = updater.New(initial, hooks{layout: layout}, updater.Options{
		DatabaseID:  db.ID,
		StreamQuota: cfg.Schema.StreamQuota,
	})
	return db, nil
}

// ApplyDDL parses and applies a DDL script as one all-or-nothing batch,
// returning the resulting snapshot. A statement that fails to parse or
// validate rejects the whole script.
//
// The version history is an audit log, not part of the commit: a history
// write failure is logged and the commit stands.
func (db *Database) ApplyDDL(ctx context.Context, script string) (*updater.Snapshot, error) {
	stmts, err := ddl.ParseScript(script)
	if err != nil {
		return nil, errors.NewAnalysisError(err)
	}

	prev := db.updater.Current()
	snap, err := db.updater.ApplyBatch(stmts)
	if err != nil {
		return nil, err
	}

	if db.log != nil && snap != prev {
		if err := db.log.Record(ctx, snap.Schema); err != nil {
			log.Printf("database: recording schema version %d failed: %v", snap.Schema.Version, err)
		}
	}
	return snap, nil
}

// Current returns the committed snapshot.
func (db *Database) Current() *updater.Snapshot {
	return db.updater.Current()
}

// History returns the version log, or nil when history is disabled.
func (db *Database) History() *history.Log {
	return db.log
}

// Close releases the version log. The in-memory schema needs no teardown.
func (db *Database) Close() error {
	if db.log == nil {
		return nil
	}
	return db.log.Close()
}

// Layout returns the on-disk layout backing the database.
func (db *Database) Layout() *storage.Layout {
	return db.layout
}

// hooks keeps the on-disk layout in step with committed schema changes.
// The schema commit already happened when a hook fires, so layout failures
// are logged rather than surfaced.
type hooks struct {
	layout *storage.Layout
}

func (h hooks) OnTableCreated(t *schema.Table) {
	if err := h.layout.CreateTable(t); err != nil {
		log.Printf("database: provisioning table %s: %v", t.Name, err)
	}
}

func (h hooks) OnTableAltered(t *schema.Table) {
	if err := h.layout.UpdateTable(t); err != nil {
		log.Printf("database: updating table %s: %v", t.Name, err)
	}
}

func (h hooks) OnTableDropped(t *schema.Table) {
	if err := h.layout.DropTable(t.Name); err != nil {
		log.Printf("database: dropping table %s: %v", t.Name, err)
	}
}

func (h hooks) OnIndexCreated(i *schema.Index) {
	if err := h.layout.CreateIndex(i); err != nil {
		log.Printf("database: provisioning index %s: %v", i.Name, err)
	}
}

func (h hooks) OnIndexDropped(i *schema.Index) {
	if err := h.layout.DropIndex(i.Name); err != nil {
		log.Printf("database: dropping index %s: %v", i.Name, err)
	}
}
