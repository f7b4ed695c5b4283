package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestImportDictionary(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "liuren.db")

	dict := "中 4E2D00004\n国 56FD00008\nbad\n人 4EBA00002\n"
	stats, err := importDictionary(ctx, strings.NewReader(dict), dbPath, logger)
	if err != nil {
		t.Fatalf("importDictionary() error = %v", err)
	}
	if stats.Parsed != 3 || stats.Skipped != 1 || stats.Written != 3 || stats.Total != 3 {
		t.Errorf("stats = %+v", stats)
	}

	// Re-import with a corrected count is idempotent on size.
	stats, err = importDictionary(ctx, strings.NewReader("国 56FD00009\n"), dbPath, logger)
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total after re-import = %d, want 3", stats.Total)
	}
}
