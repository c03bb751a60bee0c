package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionAndName(t *testing.T) {
	version, name, err := parseVersionAndName("0001_archive.up.sql")
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "archive.up.sql", name)

	_, _, err = parseVersionAndName("archive.sql")
	assert.Error(t, err)

	_, _, err = parseVersionAndName("v1_archive.sql")
	assert.Error(t, err)
}

func TestLoadMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "README.md", "nover.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	files, err := loadMigrationFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, 1, files[0].version)
	assert.Equal(t, 1, files[1].version)
	assert.Equal(t, 2, files[2].version)
	assert.Equal(t, "up", files[2].kind)

	kinds := map[string]int{}
	for _, f := range files {
		kinds[f.kind]++
	}
	assert.Equal(t, 2, kinds["up"])
	assert.Equal(t, 1, kinds["down"])
}
