package repository

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/files/models"
)

const migrationPath = "../../../migrations/001_init_files.sql"

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background(), migrationPath))
	return repo
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	f := &models.File{
		ID:           "f1",
		Filename:     "1700000000000-robot.xml",
		OriginalName: "robot.xml",
		Size:         42,
		Mimetype:     "application/xml",
		UploadedAt:   "2024-01-01T00:00:00.000Z",
	}
	require.NoError(t, repo.Create(ctx, f))

	got, err := repo.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, f, got)

	require.NoError(t, repo.Delete(ctx, "f1"))
	_, err = repo.GetByID(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "f1"), ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	files, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	for i, ts := range []string{"2024-01-01T00:00:00.000Z", "2024-03-01T00:00:00.000Z", "2024-02-01T00:00:00.000Z"} {
		require.NoError(t, repo.Create(ctx, &models.File{
			ID:           string(rune('a' + i)),
			Filename:     ts + ".stl",
			OriginalName: "part.stl",
			UploadedAt:   ts,
		}))
	}

	files, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{files[0].ID, files[1].ID, files[2].ID})
}

func TestInitIsRepeatable(t *testing.T) {
	repo := newRepo(t)
	assert.NoError(t, repo.Init(context.Background(), migrationPath))
	assert.Error(t, repo.Init(context.Background(), "missing.sql"))
}
