package mysql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixie/internal/core"
	"fixie/internal/dialect"
)

func TestRegisteredForMySQLFamily(t *testing.T) {
	for _, name := range []core.Dialect{core.DialectMySQL, core.DialectMariaDB, core.DialectTiDB} {
		d, err := dialect.GetDialect(name)
		require.NoError(t, err, name)
		assert.Equal(t, core.DialectMySQL, d.Name())
		_, ok := d.(dialect.Checker)
		assert.True(t, ok, "MySQL dialect checks statements")
	}
}

func TestInsert(t *testing.T) {
	d := NewMySQLDialect()

	stmt, args, err := d.Insert("users",
		[]string{"first_name", "last_name", "id"},
		[]any{"Roberto", "Tizio", int64(42)})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO `users` (`first_name`,`last_name`,`id`) VALUES (?,?,?)", stmt)
	assert.Equal(t, []any{"Roberto", "Tizio", int64(42)}, args)
}

func TestInsertWithNullValue(t *testing.T) {
	d := NewMySQLDialect()

	stmt, args, err := d.Insert("posts", []string{"id", "user_id"}, []any{int64(1), nil})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `posts` (`id`,`user_id`) VALUES (?,?)", stmt)
	assert.Equal(t, []any{int64(1), nil}, args)
}

func TestInsertErrors(t *testing.T) {
	d := NewMySQLDialect()

	_, _, err := d.Insert("users", nil, nil)
	assert.Error(t, err)

	_, _, err = d.Insert("users", []string{"a", "b"}, []any{1})
	assert.Error(t, err)

	_, err = d.InsertLiteral("users", []string{"a"}, nil)
	assert.Error(t, err)
}

func TestInsertLiteral(t *testing.T) {
	d := NewMySQLDialect()
	when := time.Date(2015, 5, 14, 10, 52, 0, 0, time.UTC)

	stmt, err := d.InsertLiteral("users",
		[]string{"id", "name", "active", "score", "avatar", "born", "deleted_at"},
		[]any{int64(7), "it's ?", true, 1.5, []byte{0xca, 0xfe}, when, nil})
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO `users` (`id`,`name`,`active`,`score`,`avatar`,`born`,`deleted_at`) "+
			"VALUES (7,'it''s ?',TRUE,1.5,X'cafe','2015-05-14 10:52:00',NULL)",
		stmt)
	require.NoError(t, d.CheckStatement(stmt))
}

func TestTruncate(t *testing.T) {
	d := NewMySQLDialect()

	assert.Nil(t, d.Truncate(nil))
	assert.Equal(t, []string{
		"SET FOREIGN_KEY_CHECKS = 0",
		"TRUNCATE TABLE `users`",
		"TRUNCATE TABLE `posts`",
		"SET FOREIGN_KEY_CHECKS = 1",
	}, d.Truncate([]string{"users", "posts"}))
}

func TestIsDuplicateKey(t *testing.T) {
	d := NewMySQLDialect()

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}
	assert.True(t, d.IsDuplicateKey(dup))
	assert.True(t, d.IsDuplicateKey(fmt.Errorf("insert: %w", dup)))
	assert.False(t, d.IsDuplicateKey(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}))
	assert.False(t, d.IsDuplicateKey(errors.New("Duplicate entry")))
	assert.False(t, d.IsDuplicateKey(nil))
}

func TestCheckStatement(t *testing.T) {
	d := NewMySQLDialect()

	assert.NoError(t, d.CheckStatement("INSERT INTO `users` (`id`) VALUES (1)"))
	assert.Error(t, d.CheckStatement("INSERT INTO `users` (`id` VALUES (1)"))
	assert.Error(t, d.CheckStatement("SELECT 1"))
}
