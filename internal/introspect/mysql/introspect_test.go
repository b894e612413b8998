package mysql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"fixie/internal/core"
	"fixie/internal/database"
	"fixie/internal/introspect"
)

func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	db, err := database.Open(ctx, core.DialectMySQL, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE users (
			id INT PRIMARY KEY AUTO_INCREMENT,
			first_name VARCHAR(64),
			last_name VARCHAR(64)
		)`,
		`CREATE TABLE posts (
			id INT PRIMARY KEY,
			user_id INT,
			title VARCHAR(255),
			CONSTRAINT fk_posts_user FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE comments (
			id CHAR(36) PRIMARY KEY,
			post_id INT,
			author_id INT,
			body TEXT,
			KEY idx_post (post_id),
			KEY idx_author (author_id)
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	return db
}

func TestRegistered(t *testing.T) {
	for _, d := range []core.Dialect{core.DialectMySQL, core.DialectMariaDB, core.DialectTiDB} {
		i, err := introspect.NewIntrospecter(d)
		require.NoError(t, err)
		assert.NotNil(t, i)
	}
}

func TestIntrospecterAgainstMySQL(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()
	i := New()

	server, err := i.Describe(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "testdb", server.Schema)
	assert.Equal(t, core.DialectMySQL, server.Dialect)
	assert.NotEmpty(t, server.Version)

	t.Run("primary key", func(t *testing.T) {
		pk, err := i.PrimaryKey(ctx, db, "testdb", "users")
		require.NoError(t, err)
		require.NotNil(t, pk)
		assert.Equal(t, "id", pk.Name)
		assert.Equal(t, "int", pk.Type)

		pk, err = i.PrimaryKey(ctx, db, "testdb", "comments")
		require.NoError(t, err)
		require.NotNil(t, pk)
		assert.Equal(t, "char(36)", pk.Type)

		pk, err = i.PrimaryKey(ctx, db, "testdb", "missing")
		require.NoError(t, err)
		assert.Nil(t, pk)
	})

	t.Run("constraint foreign keys", func(t *testing.T) {
		fks, err := i.ConstraintForeignKeys(ctx, db, "testdb", "posts")
		require.NoError(t, err)
		require.Len(t, fks, 1)
		assert.Equal(t, "user_id", fks[0].Name)
		assert.Equal(t, "users", fks[0].RefTable)

		fks, err = i.ConstraintForeignKeys(ctx, db, "testdb", "comments")
		require.NoError(t, err)
		assert.Empty(t, fks)
	})

	t.Run("indexed columns", func(t *testing.T) {
		fks, err := i.IndexedColumns(ctx, db, "testdb", "comments")
		require.NoError(t, err)
		require.Len(t, fks, 2)
		assert.Equal(t, "post_id", fks[0].Name)
		assert.Equal(t, "author_id", fks[1].Name)
		assert.Empty(t, fks[0].RefTable)
	})

	t.Run("table keys auto mode", func(t *testing.T) {
		keys, err := introspect.TableKeys(ctx, i, db, "testdb", "posts", core.KeyDetectionAuto)
		require.NoError(t, err)
		assert.Equal(t, core.KeySourceConstraints, keys.Source)
		assert.Equal(t, []string{"users"}, keys.References())
	})
}
