package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kunaile/janbhas"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("janbhas ingest: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("janbhas-ingest", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	driver := fs.String("db-driver", "sqlite", "Database driver (sqlite or postgres)")
	dsn := fs.String("dsn", "file:janbhas.db?_fk=1", "Database connection string")
	endpoint := fs.String("endpoint", "", "Transliteration service endpoint URL")
	timeout := fs.Duration("timeout", 60*time.Second, "Transliteration request timeout")
	mappingsDir := fs.String("mappings-dir", "", "Directory with curated transliteration mapping files")
	editor := fs.String("editor", "janbhas", "Editor name recorded on ingested rows")
	logLevel := fs.String("log-level", "info", "Log level")
	logFormat := fs.String("log-format", "console", "Log format (console, json or pretty)")
	removed := fs.String("removed", "", "Comma separated paths of deleted source files")
	auditOnly := fs.Bool("audit", false, "Run the integrity scan instead of ingesting")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := janbhas.DefaultConfig()
	cfg.Editor = *editor
	cfg.Content.Dir = *contentDir
	cfg.Content.Pattern = *pattern
	cfg.Storage.Driver = *driver
	cfg.Storage.DSN = *dsn
	cfg.Transliteration.Endpoint = *endpoint
	cfg.Transliteration.Timeout = *timeout
	cfg.Transliteration.MappingsDir = *mappingsDir
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat

	ctx := context.Background()

	module, err := janbhas.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if *auditOnly {
		warnings, err := module.Audit(ctx)
		if err != nil {
			return fmt.Errorf("integrity scan: %w", err)
		}
		for _, warning := range warnings {
			fmt.Fprintf(os.Stdout, "%s %s %q: %s\n", warning.Kind, warning.Resource, warning.Key, warning.Message)
		}
		fmt.Fprintf(os.Stdout, "%d warnings\n", len(warnings))
		return nil
	}

	files, err := changeSet(ctx, module, fs.Args(), *removed)
	if err != nil {
		return err
	}

	report, err := module.Ingest(ctx, files)
	if err != nil {
		return fmt.Errorf("ingest batch: %w", err)
	}
	fmt.Fprintln(os.Stdout, report.String())
	for _, rejection := range report.Rejections {
		fmt.Fprintf(os.Stdout, "rejected %s at %s: %s\n", rejection.Path, rejection.Stage, rejection.Reason)
	}
	return nil
}

// changeSet builds the batch input. Positional arguments name documents to
// process; with none given the whole tree is scanned.
func changeSet(ctx context.Context, module *janbhas.Module, paths []string, removed string) ([]janbhas.ChangedFile, error) {
	var files []janbhas.ChangedFile
	if len(paths) == 0 && removed == "" {
		scanned, err := module.ScanTree(ctx, ".")
		if err != nil {
			return nil, fmt.Errorf("scan content tree: %w", err)
		}
		return scanned, nil
	}
	for _, path := range paths {
		files = append(files, janbhas.ChangedFile{Path: path, Status: janbhas.StatusModified})
	}
	for _, path := range strings.Split(removed, ",") {
		if path = strings.TrimSpace(path); path != "" {
			files = append(files, janbhas.ChangedFile{Path: path, Status: janbhas.StatusRemoved})
		}
	}
	return files, nil
}
