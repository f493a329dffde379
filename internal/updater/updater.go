// Package updater applies DDL batches to the committed schema with
// all-or-nothing semantics. Each batch is validated statement by statement
// against a working copy; the first failure discards the copy and leaves
// the committed schema untouched. On success the working copy and its
// freshly synthesized information-schema catalog are published together in
// one atomic swap, so readers always observe a consistent pair.
package updater

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/vellumdb/vellum/internal/ddl"
	"github.com/vellumdb/vellum/internal/errors"
	"github.com/vellumdb/vellum/internal/infoschema"
	"github.com/vellumdb/vellum/internal/schema"
)

// DefaultStreamQuota is the maximum number of change streams that may track
// a single table, and independently a single (table, column) pair.
const DefaultStreamQuota = 3

// Options configures an Updater.
type Options struct {
	// DatabaseID is surfaced in the DATABASE_OPTIONS catalog.
	DatabaseID string

	// StreamQuota overrides DefaultStreamQuota when positive.
	StreamQuota int
}

func (o Options) streamQuota() int {
	if o.StreamQuota > 0 {
		return o.StreamQuota
	}
	return DefaultStreamQuota
}

// Snapshot is one published schema version together with its catalog.
// Readers that hold a Snapshot keep seeing it even while later batches
// commit.
type Snapshot struct {
	Schema  *schema.Schema
	Catalog *infoschema.Catalog
}

// Updater is the single writer for a database's schema. Mutation is
// serialized by mu; reads go through the atomic pointer and never block.
type Updater struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	hooks   StorageHooks
	opts    Options
}

// New creates an Updater publishing the given schema as the initial
// version. A nil hooks installs NopHooks.
func New(initial *schema.Schema, hooks StorageHooks, opts Options) *Updater {
	if hooks == nil {
		hooks = NopHooks{}
	}
	u := &Updater{hooks: hooks, opts: opts}
	snap := &Snapshot{
		Schema:  initial,
		Catalog: infoschema.Synthesize(initial, infoschema.Options{DatabaseID: opts.DatabaseID}),
	}
	u.current.Store(snap)
	return u
}

// Current returns the committed snapshot.
func (u *Updater) Current() *Snapshot {
	return u.current.Load()
}

// CurrentSchema returns the committed schema.
func (u *Updater) CurrentSchema() *schema.Schema {
	return u.current.Load().Schema
}

// ApplyBatch validates and applies a batch of DDL statements. Statements
// are resolved in order against the in-progress working schema, so later
// statements see the effects of earlier ones. If any statement fails the
// whole batch is rejected and the committed schema is unchanged.
//
// A batch whose net effect is identical to the committed schema does not
// produce a new version and fires no hooks.
func (u *Updater) ApplyBatch(stmts []ddl.Statement) (*Snapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	prev := u.current.Load()
	working := prev.Schema.Clone()

	a := &applier{s: working, quota: u.opts.streamQuota()}
	for _, stmt := range stmts {
		if err := a.applyStatement(stmt); err != nil {
			return nil, err
		}
	}

	workingFP, err := working.Fingerprint()
	if err != nil {
		return nil, errors.NewInternalError("fingerprinting working schema", err)
	}
	prevFP, err := prev.Schema.Fingerprint()
	if err != nil {
		return nil, errors.NewInternalError("fingerprinting committed schema", err)
	}
	if workingFP == prevFP {
		return prev, nil
	}

	working.Version = prev.Schema.Version + 1
	snap := &Snapshot{
		Schema:  working,
		Catalog: infoschema.Synthesize(working, infoschema.Options{DatabaseID: u.opts.DatabaseID}),
	}
	u.current.Store(snap)
	log.Printf("updater: committed schema version %d (%d statements)", working.Version, len(stmts))

	for _, ev := range a.events {
		ev.deliver(u.hooks)
	}
	return snap, nil
}

// Apply is ApplyBatch for a single statement.
func (u *Updater) Apply(stmt ddl.Statement) (*Snapshot, error) {
	return u.ApplyBatch([]ddl.Statement{stmt})
}

// applier folds validated statements into a working schema, accumulating
// the storage notifications to deliver on commit.
type applier struct {
	s      *schema.Schema
	quota  int
	events []hookEvent
}

func (a *applier) applyStatement(stmt ddl.Statement) error {
	switch st := stmt.(type) {
	case *ddl.CreateTable:
		return a.createTable(st)
	case *ddl.AlterTableAddColumn:
		return a.alterTableAddColumn(st)
	case *ddl.AlterTableDropColumn:
		return a.alterTableDropColumn(st)
	case *ddl.AlterTableAddConstraint:
		return a.alterTableAddConstraint(st)
	case *ddl.DropTable:
		return a.dropTable(st)
	case *ddl.CreateIndex:
		return a.createIndex(st)
	case *ddl.DropIndex:
		return a.dropIndex(st)
	case *ddl.CreateView:
		return a.createView(st)
	case *ddl.DropView:
		return a.dropView(st)
	case *ddl.CreateChangeStream:
		return a.createChangeStream(st)
	case *ddl.AlterChangeStream:
		return a.alterChangeStream(st)
	case *ddl.DropChangeStream:
		return a.dropChangeStream(st)
	default:
		return errors.NewInternalError("unhandled statement kind", nil)
	}
}

// fold applies the schema dialect's identifier folding.
func (a *applier) fold(name string) string {
	return a.s.Dialect.FoldName(name)
}

func (a *applier) foldAll(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = a.fold(n)
	}
	return out
}
