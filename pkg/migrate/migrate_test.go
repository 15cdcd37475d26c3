package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir(""))

	entries, err := fs.ReadDir(embedded, embeddedDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, ",")
	for _, table := range []string{"create_products_table", "create_subscription_plans_table", "create_orders_table"} {
		require.Contains(t, joined, table)
	}
}

func TestDialect(t *testing.T) {
	require.Equal(t, "sqlite3", Dialect(config.DBConfig{Driver: "sqlite"}))
	require.Equal(t, "postgres", Dialect(config.DBConfig{Driver: "postgres"}))
}

func TestRunUpOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite3", "", "up"))

	for _, table := range []string{"products", "subscription_plans", "orders"} {
		var count int
		row := sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, row.Scan(&count))
		require.Equal(t, 1, count, "table %s missing", table)
	}

	require.NoError(t, Run(ctx, sqlDB, "sqlite3", "", "down"))
}

func TestValidateDirRejectsNonPortableSQL(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nCREATE TYPE status AS ENUM ('a');\n-- +goose Down\nDROP TYPE status;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_status.sql"), []byte(body), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-portable")
}

func TestValidateDirIgnoresLiteralsAndComments(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- tags::text would not run on sqlite\nCREATE TABLE zones (id TEXT PRIMARY KEY, tags TEXT NOT NULL DEFAULT '[]', note TEXT DEFAULT 'it''s serial');\n-- +goose Down\nDROP TABLE zones;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_zones.sql"), []byte(body), 0o644))
	require.NoError(t, ValidateDir(dir))

	arrays := t.TempDir()
	body = "-- +goose Up\nCREATE TABLE zones (id TEXT PRIMARY KEY, tags TEXT[] NOT NULL);\n-- +goose Down\nDROP TABLE zones;\n"
	require.NoError(t, os.WriteFile(filepath.Join(arrays, "20260101000000_zones.sql"), []byte(body), 0o644))
	err := ValidateDir(arrays)
	require.Error(t, err)
	require.Contains(t, err.Error(), "TEXT[]")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Delivery Zones!")
	require.NoError(t, err)
	require.Regexp(t, `\d{14}_add_delivery_zones\.sql$`, path)
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRefusesDuplicate(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock = func() time.Time { return fixed }
	t.Cleanup(func() { clock = time.Now })

	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "seed zones")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301090000_seed_zones.sql"), path)

	_, err = CreateSQLMigration(dir, "seed zones")
	require.ErrorContains(t, err, "already exists")

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}
