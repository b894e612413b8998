package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	fixtures, err := LoadDir("testdata/fixtures")
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	posts, users := fixtures[0], fixtures[1]
	assert.Equal(t, "posts", posts.Table)
	assert.Equal(t, "users", users.Table)

	assert.Equal(t, []string{"hello_world", "draft"}, posts.Records.Names())
	draft, ok := posts.Records.Get("draft")
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "title", "published", "views"}, draft.Fields())
	assert.Equal(t, []any{"Ada", "Draft", false, int64(0)}, draft.Values())

	assert.Equal(t, []string{"Roberto", "Ada"}, users.Records.Names())
	ada, _ := users.Records.Get("Ada")
	assert.Equal(t, []string{"last_name", "first_name"}, ada.Fields())
}

func TestLoadDirDuplicateTable(t *testing.T) {
	_, err := LoadDir("testdata/duplicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "users" has two fixture files`)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir("testdata/missing")
	assert.Error(t, err)
}

func TestNewParser(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"users.toml", false},
		{"users.yaml", false},
		{"users.YML", false},
		{"users.json", true},
		{"users", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := NewParser(tt.path)
			if tt.wantErr {
				var ufe *UnsupportedFormatError
				assert.ErrorAs(t, err, &ufe)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "users", TableName("fixtures/users.toml"))
	assert.Equal(t, "blog_posts", TableName("blog_posts.yml"))
}
