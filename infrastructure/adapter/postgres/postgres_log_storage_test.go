package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/archive/application/port/outbound"
)

// openTestDB connects to DATABASE_URL. The archive migrations must be applied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", url)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("database not reachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func uniqueName(kind string) string {
	return kind + "_" + uuid.NewString()
}

func TestPostgresLogStorage_OpenAppendRead(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	storage := NewPostgresLogStorage(db)
	name := uniqueName("Product")
	t.Cleanup(func() { db.Exec(`DELETE FROM archive_logs WHERE name = $1`, name) })

	handle, created, err := storage.Open(ctx, name)
	require.NoError(t, err)
	assert.True(t, created)

	for _, line := range []string{"one", "two", "three"} {
		require.NoError(t, handle.AppendLine(ctx, line))
	}

	_, created, err = storage.Open(ctx, name)
	require.NoError(t, err)
	assert.False(t, created)

	lines, err := storage.ReadLines(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestPostgresLogStorage_ReadUnknown(t *testing.T) {
	storage := NewPostgresLogStorage(openTestDB(t))

	_, err := storage.ReadLines(context.Background(), uniqueName("Order"))
	assert.ErrorIs(t, err, outbound.ErrLogNotFound)
}

func TestPostgresHandle_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	storage := NewPostgresLogStorage(db)
	name := uniqueName("Customer")

	handle, _, err := storage.Open(ctx, name)
	require.NoError(t, err)
	require.NoError(t, handle.AppendLine(ctx, "entry"))

	other, _, err := storage.Open(ctx, name)
	require.NoError(t, err)

	require.NoError(t, handle.Delete(ctx))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM archive_entries WHERE log_name = $1`, name).Scan(&count))
	assert.Zero(t, count)

	assert.ErrorIs(t, other.AppendLine(ctx, "late"), outbound.ErrLogRemoved)
	assert.ErrorIs(t, other.Delete(ctx), outbound.ErrLogNotFound)
}
