// Package main implements the vellum-ddl command line tool. It applies DDL
// scripts to a database instance and prints the resulting information
// schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/vellumdb/vellum/internal/config"
	"github.com/vellumdb/vellum/internal/database"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML or JSON config file")
		dataDir    = flag.String("data-dir", "", "override the data directory")
		dialectFlg = flag.String("dialect", "", "override the SQL dialect (google_standard_sql or postgresql)")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig(*configPath, *dataDir, *dialectFlg)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "apply":
		err = runApply(ctx, db, args[1:])
	case "show":
		err = runShow(db, args[1:])
	case "versions":
		err = runVersions(ctx, db)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vellum-ddl [flags] <command>

Commands:
  apply <file.sql>...   apply DDL scripts as all-or-nothing batches ("-" reads stdin)
  show [table]          print an information schema table (default: list tables)
  versions              list recorded schema versions

Flags:
`)
	flag.PrintDefaults()
}

func loadConfig(path, dataDir, dialectName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dialectName != "" {
		cfg.Dialect = dialectName
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runApply(ctx context.Context, db *database.Database, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("apply: no script files given")
	}
	for _, f := range files {
		var script []byte
		var err error
		if f == "-" {
			script, err = io.ReadAll(os.Stdin)
		} else {
			script, err = os.ReadFile(f)
		}
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		snap, err := db.ApplyDDL(ctx, string(script))
		if err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
		fmt.Printf("%s: schema version %d (%d tables, %d views, %d change streams)\n",
			f, snap.Schema.Version, len(snap.Schema.Tables), len(snap.Schema.Views),
			len(snap.Schema.ChangeStreams))
	}
	return nil
}

func runShow(db *database.Database, args []string) error {
	catalog := db.Current().Catalog

	if len(args) == 0 {
		for _, t := range catalog.Tables() {
			fmt.Printf("%s\t%d rows\n", t.Name, len(t.Rows))
		}
		return nil
	}

	t := catalog.Table(args[0])
	if t == nil {
		return fmt.Errorf("show: no information schema table named %s", args[0])
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.ColumnNames(catalog.Dialect), "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func runVersions(ctx context.Context, db *database.Database) error {
	hl := db.History()
	if hl == nil {
		return fmt.Errorf("versions: history is disabled")
	}
	recs, err := hl.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFINGERPRINT\tCREATED")
	for _, rec := range recs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Version, rec.Fingerprint, rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
