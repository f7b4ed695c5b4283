package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	require.NoError(t, err, "open test database")

	_, err = db.Migrate(context.Background())
	require.NoError(t, err, "migrate test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func sampleCast(method CastMethod) *Cast {
	return &Cast{
		Method:    method,
		Inputs:    [3]int{6, 6, 2},
		Initial:   "空亡",
		Middle:    "留连",
		Final:     "速喜",
		Relation1: "克",
		Relation2: "克",
	}
}

func strPtr(s string) *string {
	return &s
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.Health(context.Background()))
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Already applied in testDB, so a second run is a no-op.
	count, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, latestVersion(), version)
}

func TestHealth_PendingMigrations(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"), slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	assert.Error(t, db.Health(ctx), "fresh database has no schema")

	count, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
	assert.NoError(t, db.Health(ctx))
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/liuren.db"
	db, err := Open(DefaultConfig(path), nil)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestConfigDSN(t *testing.T) {
	assert.Equal(t, "file:x.db?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000",
		Config{Path: "x.db"}.DSN())
	assert.Contains(t, Config{Path: "x.db", BusyTimeout: time.Second}.DSN(), "_busy_timeout=1000")
}

func TestWithTx_Panic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = db.WithTx(ctx, func(tx *Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO stroke_counts (character, strokes) VALUES ('好', 6)`)
			panic("boom")
		})
	})

	_, err := db.GetStrokeCount(ctx, "好")
	assert.True(t, IsNotFound(err), "row should not exist after panic, got %v", err)
}

// -----------------------------------------------------------------
// Cast tests
// -----------------------------------------------------------------

func TestCreateCast(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := sampleCast(CastMethodCharacters)
	c.Source = strPtr("中国人")
	c.Question = strPtr("出行?")
	require.NoError(t, db.CreateCast(ctx, c))

	_, err := uuid.Parse(c.ID)
	assert.NoError(t, err, "ID should be a UUID, got %q", c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := db.GetCast(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Inputs, got.Inputs)
	assert.Equal(t, "空亡", got.Initial)
	assert.Equal(t, "速喜", got.Final)
	assert.Equal(t, "克", got.Relation2)
	require.NotNil(t, got.Source)
	assert.Equal(t, "中国人", *got.Source)
	require.NotNil(t, got.Question)
	assert.Equal(t, "出行?", *got.Question)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt), "CreatedAt = %v, want %v", got.CreatedAt, c.CreatedAt)
}

func TestCreateCast_NullableFields(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	c := sampleCast(CastMethodNumbers)
	require.NoError(t, db.CreateCast(ctx, c))

	got, err := db.GetCast(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Source)
	assert.Nil(t, got.Question)
}

func TestCreateCast_Invalid(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	err := db.CreateCast(ctx, sampleCast("tarot"))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	c := sampleCast(CastMethodNumbers)
	c.Inputs[1] = 0
	assert.Error(t, db.CreateCast(ctx, c), "schema should reject non-positive inputs")
}

func TestGetCast_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetCast(context.Background(), uuid.NewString())
	assert.True(t, IsNotFound(err), "error = %v, want ErrNotFound", err)
}

func TestListCasts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var ids []string
	for _, m := range []CastMethod{CastMethodNumbers, CastMethodDate, CastMethodCharacters} {
		c := sampleCast(m)
		require.NoError(t, db.CreateCast(ctx, c))
		ids = append(ids, c.ID)
	}

	casts, err := db.ListCasts(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, casts, 3)
	assert.Equal(t, ids[2], casts[0].ID, "newest first")
	assert.Equal(t, ids[0], casts[2].ID)

	page, err := db.ListCasts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	empty, err := db.ListCasts(ctx, 10, 50)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetCastStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	stats, err := db.GetCastStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.Latest)

	for _, m := range []CastMethod{CastMethodNumbers, CastMethodNumbers, CastMethodDate} {
		require.NoError(t, db.CreateCast(ctx, sampleCast(m)))
	}

	stats, err = db.GetCastStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByMethod[CastMethodNumbers])
	assert.Equal(t, 1, stats.ByMethod[CastMethodDate])
	assert.NotNil(t, stats.Latest)
}

func TestCastMethod_IsValid(t *testing.T) {
	for _, m := range ValidCastMethods() {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, CastMethod("dice").IsValid())
}

// -----------------------------------------------------------------
// Stroke dictionary tests
// -----------------------------------------------------------------

func TestUpsertStrokeCounts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n, err := db.UpsertStrokeCounts(ctx, []StrokeEntry{
		{"中", 4}, {"国", 8}, {"人", 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Replacing an existing character keeps the count stable.
	_, err = db.UpsertStrokeCounts(ctx, []StrokeEntry{{"国", 11}})
	require.NoError(t, err)

	total, err := db.CountStrokeEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	got, err := db.GetStrokeCount(ctx, "国")
	require.NoError(t, err)
	assert.Equal(t, 11, got)
}

func TestStrokeCount_Miss(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.GetStrokeCount(ctx, "龘")
	assert.True(t, IsNotFound(err))

	_, err = db.StrokeCount(ctx, "龘")
	assert.ErrorIs(t, err, apperr.ErrLookupMiss)
	assert.Contains(t, err.Error(), "龘")
}

// -----------------------------------------------------------------
// Transaction tests
// -----------------------------------------------------------------

func TestWithTx(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO stroke_counts (character, strokes) VALUES ('好', 6)`)
		return err
	})
	require.NoError(t, err)

	n, err := db.GetStrokeCount(ctx, "好")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stroke_counts (character, strokes) VALUES ('你', 7)`); err != nil {
			return err
		}
		// Force error to trigger rollback
		return ErrNotFound
	})
	require.True(t, errors.Is(err, ErrNotFound), "error = %v", err)

	_, err = db.GetStrokeCount(ctx, "你")
	assert.True(t, IsNotFound(err), "row should not exist after rollback, got %v", err)
}

func TestUpsertStrokeCounts_RollsBackOnBadRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.UpsertStrokeCounts(ctx, []StrokeEntry{{"中", 4}, {"坏", 0}})
	require.Error(t, err)

	total, err := db.CountStrokeEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
