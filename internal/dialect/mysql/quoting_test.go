package mysql

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiersInStatements(t *testing.T) {
	d := NewMySQLDialect()

	tests := []struct {
		name   string
		input  string
		quoted string
	}{
		{name: "plain", input: "users", quoted: "`users`"},
		{name: "spaces", input: "user table", quoted: "`user table`"},
		{name: "backtick", input: "user`table", quoted: "`user``table`"},
		{name: "backticks", input: "tab`le`name", quoted: "`tab``le``name`"},
		{name: "surrounding spaces trimmed", input: "  users  ", quoted: "`users`"},
		{name: "reserved word", input: "order", quoted: "`order`"},
		{name: "dotted", input: "blog.posts", quoted: "`blog.posts`"},
		{name: "unicode", input: "utenti_è", quoted: "`utenti_è`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, args, err := d.Insert(tt.input, []string{tt.input}, []any{int64(1)})
			require.NoError(t, err)
			assert.Equal(t, "INSERT INTO "+tt.quoted+" ("+tt.quoted+") VALUES (?)", stmt)
			assert.Equal(t, []any{int64(1)}, args)

			literal, err := d.InsertLiteral(tt.input, []string{tt.input}, []any{int64(1)})
			require.NoError(t, err)
			assert.Equal(t, "INSERT INTO "+tt.quoted+" ("+tt.quoted+") VALUES (1)", literal)
			require.NoError(t, d.CheckStatement(literal))

			stmts := d.Truncate([]string{tt.input})
			require.Len(t, stmts, 3)
			assert.Equal(t, "TRUNCATE TABLE "+tt.quoted, stmts[1])
		})
	}
}

func TestStringValuesInLiteralInserts(t *testing.T) {
	d := NewMySQLDialect()

	tests := []struct {
		name   string
		value  string
		quoted string
	}{
		{name: "plain", value: "Roberto", quoted: "'Roberto'"},
		{name: "empty", value: "", quoted: "''"},
		{name: "apostrophe", value: "John's data", quoted: "'John''s data'"},
		{name: "backslash", value: `C:\fixtures`, quoted: `'C:\\fixtures'`},
		{name: "newline", value: "line\nbreak", quoted: `'line\nbreak'`},
		{name: "carriage return", value: "a\rb", quoted: `'a\rb'`},
		{name: "nul", value: "a\x00b", quoted: `'a\0b'`},
		{name: "ctrl z", value: "a\x1Ab", quoted: `'a\Zb'`},
		{name: "placeholder", value: "why?", quoted: "'why?'"},
		{name: "unicode", value: "Città 🌍", quoted: "'Città 🌍'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.quoted, d.QuoteString(tt.value))

			stmt, err := d.InsertLiteral("users", []string{"first_name"}, []any{tt.value})
			require.NoError(t, err)
			assert.Equal(t, "INSERT INTO `users` (`first_name`) VALUES ("+tt.quoted+")", stmt)
			require.NoError(t, d.CheckStatement(stmt))
		})
	}
}

func TestBinaryKeyInLiteralInsert(t *testing.T) {
	d := NewMySQLDialect()
	id := uuid.MustParse("c6ba1f1f-de6b-5b10-a81b-e983cadcd828")

	stmt, err := d.InsertLiteral("sessions", []string{"id", "user_id"}, []any{id[:], nil})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO `sessions` (`id`,`user_id`) VALUES (X'c6ba1f1fde6b5b10a81be983cadcd828',NULL)",
		stmt)
	require.NoError(t, d.CheckStatement(stmt))
}
