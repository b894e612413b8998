package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixie/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "", cfg.DSN)
	assert.Equal(t, "DATABASE_URL", cfg.DSNEnv)
	assert.Equal(t, "fixtures", cfg.Fixtures)
	assert.Equal(t, "auto", cfg.KeyDetection)
	assert.Equal(t, "human", cfg.Format)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "fixie.toml", `
dialect = "postgres"
dsn = "postgres://localhost/app"
fixtures = "testdata/fixtures"
key_detection = "index"
`)
	t.Setenv("FIXIE_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, "testdata/fixtures", cfg.Fixtures)
	assert.Equal(t, "json", cfg.Format)

	d, err := cfg.DatabaseDialect()
	require.NoError(t, err)
	assert.Equal(t, core.DialectPostgreSQL, d)

	mode, err := cfg.Detection()
	require.NoError(t, err)
	assert.Equal(t, core.KeyDetectionIndex, mode)

	t.Setenv("FIXIE_KEY_DETECTION", "constraints")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "constraints", cfg.KeyDetection)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	path := writeFile(t, dir, "custom.yaml", "dialect: sqlite\ndsn: ':memory:'\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, ":memory:", cfg.DSN)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "FIXIE_TEST_DOTENV_URL=root:pw@tcp(localhost:3306)/fromenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("FIXIE_TEST_DOTENV_URL") })
	writeFile(t, dir, "fixie.toml", `dsn_env = "FIXIE_TEST_DOTENV_URL"`)

	cfg, err := Load("")
	require.NoError(t, err)

	dsn, err := cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(localhost:3306)/fromenv", dsn)
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{DSN: "explicit", DSNEnv: "FIXIE_TEST_UNUSED"}
	dsn, err := cfg.DatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "explicit", dsn)

	cfg = &Config{DSNEnv: "FIXIE_TEST_EMPTY_URL"}
	_, err = cfg.DatabaseURL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIXIE_TEST_EMPTY_URL")

	_, err = (&Config{}).DatabaseURL()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Dialect:      "mysql",
		DSN:          "root:pw@tcp(localhost:3306)/testdb",
		Fixtures:     "fixtures",
		KeyDetection: "auto",
		Format:       "human",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		mutate   func(*Config)
		contains string
	}{
		{"dialect", func(c *Config) { c.Dialect = "oracle" }, "unsupported dialect"},
		{"key detection", func(c *Config) { c.KeyDetection = "guess" }, "unsupported key detection"},
		{"format", func(c *Config) { c.Format = "xml" }, "unsupported format"},
		{"fixtures", func(c *Config) { c.Fixtures = "" }, "fixtures cannot be empty"},
		{"mysql without database", func(c *Config) { c.DSN = "root:pw@tcp(localhost:3306)/" }, "must select a database"},
		{"mysql malformed", func(c *Config) { c.DSN = "not a dsn" }, "invalid mysql dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	sqlite := valid
	sqlite.Dialect = "sqlite"
	sqlite.DSN = ":memory:"
	assert.NoError(t, sqlite.Validate())
}
