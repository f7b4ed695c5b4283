// Command import loads the stroke-count dictionary into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -dict data/hanzi_dictionary.txt -db data/liuren.db
//
// Each dictionary line is "<char> <code>", where characters 8-9 of code are
// the stroke count. Malformed lines are skipped. Rows are upserted in a single
// transaction, so the import can be re-run after the dictionary changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/liuren-api/internal/database"
	"github.com/zapponejosh/liuren-api/internal/strokes"
)

func main() {
	dictPath := flag.String("dict", "data/hanzi_dictionary.txt", "Path to stroke dictionary")
	dbPath := flag.String("db", "data/liuren.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(context.Background(), *dictPath, *dbPath, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Parsed  int
	Skipped int
	Written int
	Total   int
}

func run(ctx context.Context, dictPath, dbPath string, logger *slog.Logger) error {
	startTime := time.Now()

	// =========================================================================
	// Step 1: Parse dictionary
	// =========================================================================
	logger.Info("reading dictionary", slog.String("path", dictPath))

	f, err := os.Open(dictPath)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	stats, err := importDictionary(ctx, f, dbPath, logger)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	logger.Info("import verified",
		slog.Int("dictionary_size", stats.Total),
		slog.Duration("elapsed", elapsed),
	)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Lines parsed:        %d\n", stats.Parsed)
	fmt.Printf("Lines skipped:       %d\n", stats.Skipped)
	fmt.Printf("Rows written:        %d\n", stats.Written)
	fmt.Printf("Dictionary size:     %d\n", stats.Total)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// importDictionary parses r and upserts its rows into the database at dbPath.
func importDictionary(ctx context.Context, r io.Reader, dbPath string, logger *slog.Logger) (ImportStats, error) {
	var stats ImportStats

	entries, skipped, err := strokes.ParseDictionary(r)
	if err != nil {
		return stats, err
	}
	stats.Parsed = len(entries)
	stats.Skipped = skipped
	logger.Info("parsed dictionary", slog.Int("entries", len(entries)), slog.Int("skipped", skipped))

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return stats, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return stats, fmt.Errorf("run migrations: %w", err)
	}

	// =========================================================================
	// Step 3: Upsert in one transaction and verify
	// =========================================================================
	rows := make([]database.StrokeEntry, len(entries))
	for i, e := range entries {
		rows[i] = database.StrokeEntry{Character: e.Character, Strokes: e.Strokes}
	}

	if stats.Written, err = db.UpsertStrokeCounts(ctx, rows); err != nil {
		return stats, fmt.Errorf("import data: %w", err)
	}
	if stats.Total, err = db.CountStrokeEntries(ctx); err != nil {
		return stats, fmt.Errorf("count entries: %w", err)
	}

	return stats, nil
}
