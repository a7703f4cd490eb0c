package records

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE records (
  purpose    TEXT NOT NULL,
  owner      TEXT NOT NULL,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (purpose, owner)
);`)
	require.NoError(t, err)
	return db
}

func TestPutAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	key := Key{Purpose: PurposeTasks, Owner: "a@b.com"}

	require.NoError(t, r.Put(ctx, key, []byte(`[{"id":"1"}]`)))

	v, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(v))
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), Key{Purpose: PurposeArchive, Owner: "nobody@x.io"})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPut_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	key := Key{Purpose: PurposeTheme, Owner: "a@b.com"}

	require.NoError(t, r.Put(ctx, key, []byte(`"light"`)))
	require.NoError(t, r.Put(ctx, key, []byte(`"dark"`)))

	v, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(v))
}

func TestKeys_AreIsolatedByPurposeAndOwner(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, Key{PurposeTasks, "a@b.com"}, []byte("A-tasks")))
	require.NoError(t, r.Put(ctx, Key{PurposeArchive, "a@b.com"}, []byte("A-archive")))
	require.NoError(t, r.Put(ctx, Key{PurposeTasks, "c@d.com"}, []byte("C-tasks")))

	v, err := r.Get(ctx, Key{PurposeTasks, "c@d.com"})
	require.NoError(t, err)
	assert.Equal(t, "C-tasks", string(v))

	v, err = r.Get(ctx, Key{PurposeArchive, "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "A-archive", string(v))
}

func TestOwner_IsCaseInsensitive(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, Key{PurposeTasks, "A@B.com"}, []byte("x")))

	v, err := r.Get(ctx, Key{PurposeTasks, " a@b.COM "})
	require.NoError(t, err)
	assert.Equal(t, "x", string(v))
}

func TestDeleteAndPurposes(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, Key{PurposeTasks, "a@b.com"}, []byte("1")))
	require.NoError(t, r.Put(ctx, Key{PurposeReminders, "a@b.com"}, []byte("2")))

	ps, err := r.Purposes(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, []Purpose{PurposeReminders, PurposeTasks}, ps)

	require.NoError(t, r.Delete(ctx, Key{PurposeTasks, "a@b.com"}))
	require.NoError(t, r.Delete(ctx, Key{PurposeTasks, "a@b.com"}))

	ps, err = r.Purposes(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, []Purpose{PurposeReminders}, ps)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, Key{PurposeTasks, "a"})
	require.ErrorContains(t, err, "failed to get record tasks/a")

	err = r.Put(ctx, Key{PurposeTasks, "a"}, nil)
	require.ErrorContains(t, err, "failed to put record tasks/a")

	err = r.Delete(ctx, Key{PurposeTasks, "a"})
	require.ErrorContains(t, err, "failed to delete record tasks/a")

	_, err = r.Purposes(ctx, "a")
	require.Error(t, err)
}
