package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// =============================================================================
// Cast Queries
// =============================================================================

const castColumns = `
	id, method, input1, input2, input3,
	initial_symbol, middle_symbol, final_symbol,
	relation1, relation2, source, question, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCast(row rowScanner) (*Cast, error) {
	var c Cast
	var source, question, createdAt sql.NullString

	err := row.Scan(
		&c.ID, &c.Method, &c.Inputs[0], &c.Inputs[1], &c.Inputs[2],
		&c.Initial, &c.Middle, &c.Final,
		&c.Relation1, &c.Relation2, &source, &question, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Source = stringPtr(source)
	c.Question = stringPtr(question)
	if t := parseTimestamp(createdAt); t != nil {
		c.CreatedAt = *t
	}
	return &c, nil
}

// CreateCast stores a cast. An empty ID is filled with a new UUID and
// CreatedAt is set to the current time.
func (db *DB) CreateCast(ctx context.Context, c *Cast) error {
	if !c.Method.IsValid() {
		return fmt.Errorf("cast method %q: %w", c.Method, apperr.ErrInvalidArgument)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := db.ExecContext(ctx, `
		INSERT INTO casts (`+castColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Method, c.Inputs[0], c.Inputs[1], c.Inputs[2],
		c.Initial, c.Middle, c.Final,
		c.Relation1, c.Relation2, nullString(c.Source), nullString(c.Question),
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert cast: %w", err)
	}

	db.logger.Debug("cast stored", "id", c.ID, "method", c.Method)
	return nil
}

// GetCast retrieves a cast by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetCast(ctx context.Context, id string) (*Cast, error) {
	row := db.QueryRowContext(ctx, `SELECT `+castColumns+` FROM casts WHERE id = ?`, id)

	c, err := scanCast(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query cast: %w", err)
	}
	return c, nil
}

// ListCasts returns casts newest first.
func (db *DB) ListCasts(ctx context.Context, limit, offset int) ([]Cast, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+castColumns+`
		FROM casts
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query casts: %w", err)
	}
	defer rows.Close()

	casts := []Cast{}
	for rows.Next() {
		c, err := scanCast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cast: %w", err)
		}
		casts = append(casts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate casts: %w", err)
	}
	return casts, nil
}

// GetCastStats counts stored casts by method.
func (db *DB) GetCastStats(ctx context.Context) (*CastStats, error) {
	stats := &CastStats{ByMethod: make(map[CastMethod]int)}

	rows, err := db.QueryContext(ctx, `SELECT method, COUNT(*) FROM casts GROUP BY method`)
	if err != nil {
		return nil, fmt.Errorf("query cast stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m CastMethod
		var n int
		if err := rows.Scan(&m, &n); err != nil {
			return nil, fmt.Errorf("scan cast stats: %w", err)
		}
		stats.ByMethod[m] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cast stats: %w", err)
	}

	var latest sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM casts`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("query latest cast: %w", err)
	}
	stats.Latest = parseTimestamp(latest)

	return stats, nil
}

// =============================================================================
// Stroke Dictionary Queries
// =============================================================================

// UpsertStrokeCounts inserts or replaces dictionary rows in one transaction
// and returns the number written.
func (db *DB) UpsertStrokeCounts(ctx context.Context, entries []StrokeEntry) (int, error) {
	n := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stroke_counts (character, strokes)
			VALUES (?, ?)
			ON CONFLICT(character) DO UPDATE SET
				strokes = excluded.strokes,
				updated_at = datetime('now')`)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Character, e.Strokes); err != nil {
				return fmt.Errorf("upsert %q: %w", e.Character, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("stroke dictionary updated", "entries", n)
	return n, nil
}

// GetStrokeCount returns the stroke count of a character.
// Returns ErrNotFound if the character is not in the dictionary.
func (db *DB) GetStrokeCount(ctx context.Context, char string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT strokes FROM stroke_counts WHERE character = ?`, char,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("query stroke count: %w", err)
	}
	return n, nil
}

// StrokeCount adapts GetStrokeCount to the lookup contract used by the
// divination service: unknown characters become apperr.ErrLookupMiss.
func (db *DB) StrokeCount(ctx context.Context, char string) (int, error) {
	n, err := db.GetStrokeCount(ctx, char)
	if IsNotFound(err) {
		return 0, fmt.Errorf("character %q not in stroke dictionary: %w", char, apperr.ErrLookupMiss)
	}
	return n, err
}

// CountStrokeEntries returns the dictionary size.
func (db *DB) CountStrokeEntries(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stroke_counts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stroke entries: %w", err)
	}
	return n, nil
}
